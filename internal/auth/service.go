package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/inkoverlay/internal/db/dbgen"
	"github.com/inamate/inkoverlay/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNameTaken          = errors.New("profile name already taken")
	ErrNotFound           = errors.New("profile not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// Store is the profile persistence used by the service. *dbgen.Queries
// implements it.
type Store interface {
	CreateProfile(ctx context.Context, arg dbgen.CreateProfileParams) (dbgen.Profile, error)
	GetProfileByName(ctx context.Context, name string) (dbgen.Profile, error)
	GetProfileByID(ctx context.Context, id string) (dbgen.Profile, error)
}

type Service struct {
	store      Store
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewService(store Store, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: 12,
		now:        time.Now,
	}
}

type AuthResult struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Service) Register(ctx context.Context, name, password string) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	dbProfile, err := s.store.CreateProfile(ctx, dbgen.CreateProfileParams{
		ID:       typeid.NewProfileID(),
		Name:     name,
		Password: string(hash),
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return s.result(dbProfile)
}

func (s *Service) Login(ctx context.Context, name, password string) (*AuthResult, error) {
	dbProfile, err := s.store.GetProfileByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dbProfile.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.result(dbProfile)
}

func (s *Service) result(p dbgen.Profile) (*AuthResult, error) {
	token, err := s.IssueToken(p.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:   token,
		Profile: Profile{ID: p.ID, Name: p.Name},
	}, nil
}

// ValidateToken returns the profile ID the token was issued to.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	profileID, ok := claims["sub"].(string)
	if !ok || profileID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return profileID, nil
}

func (s *Service) GetProfile(ctx context.Context, profileID string) (*Profile, error) {
	dbProfile, err := s.store.GetProfileByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &Profile{ID: dbProfile.ID, Name: dbProfile.Name}, nil
}

// IssueToken signs a token for profileID.
func (s *Service) IssueToken(profileID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": profileID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
