package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type profileKey struct{}

var (
	errNoCredentials = errors.New("missing authorization header")
	errBadScheme     = errors.New("authorization must use the Bearer scheme")
)

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadScheme
	}
	return token, nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token's profile id in the request context.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		profileID, err := s.ValidateToken(token)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), profileID)))
	})
}

// WithProfileID returns a context carrying profileID.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileKey{}, profileID)
}

// ProfileIDFromContext returns the authenticated profile, or "" outside
// AuthMiddleware.
func ProfileIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(profileKey{}).(string)
	return id
}
