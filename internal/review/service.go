package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/inkoverlay/internal/db/dbgen"
	"github.com/inamate/inkoverlay/internal/typeid"
)

var (
	ErrNotFound  = errors.New("review session not found")
	ErrForbidden = errors.New("forbidden")
)

// Store is the session persistence used by the service. *dbgen.Queries
// implements it.
type Store interface {
	CreateReviewSession(ctx context.Context, arg dbgen.CreateReviewSessionParams) (dbgen.ReviewSession, error)
	GetReviewSession(ctx context.Context, id string) (dbgen.ReviewSession, error)
	UpdateReviewSessionStatus(ctx context.Context, arg dbgen.UpdateReviewSessionStatusParams) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type Session struct {
	ID        string          `json:"id"`
	ProfileID string          `json:"profileId"`
	Status    json.RawMessage `json:"status,omitempty"`
	Clients   int             `json:"clients"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

func (s *Service) Create(ctx context.Context, profileID string) (*Session, error) {
	row, err := s.store.CreateReviewSession(ctx, dbgen.CreateReviewSessionParams{
		ID:        typeid.NewSessionID(),
		ProfileID: profileID,
	})
	if err != nil {
		return nil, fmt.Errorf("create review session: %w", err)
	}
	return toSession(row), nil
}

// Get returns the session if it belongs to profileID.
func (s *Service) Get(ctx context.Context, sessionID, profileID string) (*Session, error) {
	if err := typeid.Validate(sessionID, typeid.PrefixSession); err != nil {
		return nil, ErrNotFound
	}

	row, err := s.store.GetReviewSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review session: %w", err)
	}
	if row.ProfileID != profileID {
		return nil, ErrForbidden
	}
	return toSession(row), nil
}

// SaveStatus stores the last status an overlay reported. It runs on relay
// goroutines and so uses its own context.
func (s *Service) SaveStatus(sessionID string, status json.RawMessage) error {
	err := s.store.UpdateReviewSessionStatus(context.Background(), dbgen.UpdateReviewSessionStatusParams{
		ID:         sessionID,
		LastStatus: status,
	})
	if err != nil {
		return fmt.Errorf("update review session status: %w", err)
	}
	return nil
}

func toSession(row dbgen.ReviewSession) *Session {
	sess := &Session{
		ID:        row.ID,
		ProfileID: row.ProfileID,
	}
	if len(row.LastStatus) > 0 {
		sess.Status = row.LastStatus
	}
	if row.CreatedAt.Valid {
		sess.CreatedAt = row.CreatedAt.Time.UTC().Format("2006-01-02T15:04:05Z")
	}
	return sess
}
