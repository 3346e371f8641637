package dbgen

import (
	"context"
)

const getPenSettings = `-- name: GetPenSettings :one
SELECT profile_id, enabled, color, width, opacity, updated_at FROM pen_settings
WHERE profile_id = $1
`

func (q *Queries) GetPenSettings(ctx context.Context, profileID string) (PenSetting, error) {
	row := q.db.QueryRow(ctx, getPenSettings, profileID)
	var i PenSetting
	err := row.Scan(
		&i.ProfileID,
		&i.Enabled,
		&i.Color,
		&i.Width,
		&i.Opacity,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertPenSettings = `-- name: UpsertPenSettings :one
INSERT INTO pen_settings (profile_id, enabled, color, width, opacity)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (profile_id) DO UPDATE
SET enabled = EXCLUDED.enabled,
    color = EXCLUDED.color,
    width = EXCLUDED.width,
    opacity = EXCLUDED.opacity,
    updated_at = now()
RETURNING profile_id, enabled, color, width, opacity, updated_at
`

type UpsertPenSettingsParams struct {
	ProfileID string  `json:"profile_id"`
	Enabled   bool    `json:"enabled"`
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	Opacity   float64 `json:"opacity"`
}

func (q *Queries) UpsertPenSettings(ctx context.Context, arg UpsertPenSettingsParams) (PenSetting, error) {
	row := q.db.QueryRow(ctx, upsertPenSettings,
		arg.ProfileID,
		arg.Enabled,
		arg.Color,
		arg.Width,
		arg.Opacity,
	)
	var i PenSetting
	err := row.Scan(
		&i.ProfileID,
		&i.Enabled,
		&i.Color,
		&i.Width,
		&i.Opacity,
		&i.UpdatedAt,
	)
	return i, err
}
