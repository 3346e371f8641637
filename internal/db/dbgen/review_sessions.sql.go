package dbgen

import (
	"context"
)

const createReviewSession = `-- name: CreateReviewSession :one
INSERT INTO review_sessions (id, profile_id)
VALUES ($1, $2)
RETURNING id, profile_id, last_status, created_at, updated_at
`

type CreateReviewSessionParams struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`
}

func (q *Queries) CreateReviewSession(ctx context.Context, arg CreateReviewSessionParams) (ReviewSession, error) {
	row := q.db.QueryRow(ctx, createReviewSession, arg.ID, arg.ProfileID)
	var i ReviewSession
	err := row.Scan(
		&i.ID,
		&i.ProfileID,
		&i.LastStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getReviewSession = `-- name: GetReviewSession :one
SELECT id, profile_id, last_status, created_at, updated_at FROM review_sessions
WHERE id = $1
`

func (q *Queries) GetReviewSession(ctx context.Context, id string) (ReviewSession, error) {
	row := q.db.QueryRow(ctx, getReviewSession, id)
	var i ReviewSession
	err := row.Scan(
		&i.ID,
		&i.ProfileID,
		&i.LastStatus,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateReviewSessionStatus = `-- name: UpdateReviewSessionStatus :exec
UPDATE review_sessions
SET last_status = $2, updated_at = now()
WHERE id = $1
`

type UpdateReviewSessionStatusParams struct {
	ID         string `json:"id"`
	LastStatus []byte `json:"last_status"`
}

func (q *Queries) UpdateReviewSessionStatus(ctx context.Context, arg UpdateReviewSessionStatusParams) error {
	_, err := q.db.Exec(ctx, updateReviewSessionStatus, arg.ID, arg.LastStatus)
	return err
}
