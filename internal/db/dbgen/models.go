package dbgen

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Profile struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Password  string             `json:"password"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type PenSetting struct {
	ProfileID string             `json:"profile_id"`
	Enabled   bool               `json:"enabled"`
	Color     string             `json:"color"`
	Width     float64            `json:"width"`
	Opacity   float64            `json:"opacity"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type ReviewSession struct {
	ID         string             `json:"id"`
	ProfileID  string             `json:"profile_id"`
	LastStatus []byte             `json:"last_status"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}
