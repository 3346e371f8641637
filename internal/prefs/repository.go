package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/inkoverlay/internal/db/dbgen"
	"github.com/inamate/inkoverlay/internal/settings"
)

// ErrNotFound is returned when a profile never saved settings.
var ErrNotFound = errors.New("settings not found")

// Repository persists overlay settings per profile.
type Repository interface {
	Load(ctx context.Context, profileID string) (settings.Settings, error)
	Save(ctx context.Context, profileID string, s settings.Settings) (settings.Settings, error)
}

// Queries is the subset of dbgen.Queries used by PostgresRepository.
type Queries interface {
	GetPenSettings(ctx context.Context, profileID string) (dbgen.PenSetting, error)
	UpsertPenSettings(ctx context.Context, arg dbgen.UpsertPenSettingsParams) (dbgen.PenSetting, error)
}

type PostgresRepository struct {
	queries Queries
}

func NewPostgresRepository(queries Queries) *PostgresRepository {
	return &PostgresRepository{queries: queries}
}

func (r *PostgresRepository) Load(ctx context.Context, profileID string) (settings.Settings, error) {
	row, err := r.queries.GetPenSettings(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Settings{}, ErrNotFound
		}
		return settings.Settings{}, fmt.Errorf("get pen settings: %w", err)
	}
	return fromRow(row), nil
}

func (r *PostgresRepository) Save(ctx context.Context, profileID string, s settings.Settings) (settings.Settings, error) {
	row, err := r.queries.UpsertPenSettings(ctx, dbgen.UpsertPenSettingsParams{
		ProfileID: profileID,
		Enabled:   s.Enabled,
		Color:     s.Color,
		Width:     s.Width,
		Opacity:   s.Opacity,
	})
	if err != nil {
		return settings.Settings{}, fmt.Errorf("upsert pen settings: %w", err)
	}
	return fromRow(row), nil
}

func fromRow(row dbgen.PenSetting) settings.Settings {
	return settings.Settings{
		Enabled: row.Enabled,
		Color:   row.Color,
		Width:   row.Width,
		Opacity: row.Opacity,
	}
}

// MemoryRepository keeps settings in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]settings.Settings
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]settings.Settings)}
}

func (r *MemoryRepository) Load(_ context.Context, profileID string) (settings.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[profileID]
	if !ok {
		return settings.Settings{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepository) Save(_ context.Context, profileID string, s settings.Settings) (settings.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[profileID] = s
	return s, nil
}
