package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/accountforge/service-identity-go/internal/apperror"
	"github.com/accountforge/service-identity-go/internal/identity/entity"
	"github.com/accountforge/service-identity-go/internal/token"
)

type ctxKey string

const profileContextKey ctxKey = "profile"

// authScheme is the fixed prefix of the Authorization header. Matching is
// case-insensitive so both "jwt <token>" and the "JWT <token>" string handed
// out at login are accepted.
const authScheme = "jwt"

// AuthMiddleware is the per-request authentication gate: it extracts the
// bearer token, verifies it, resolves the bound account, and attaches the
// public profile to the request context. Any failure short-circuits with 403
// and the uniform error envelope; soft-deleted and unknown accounts are
// rejected identically.
func AuthMiddleware(tokens *token.Service, store Store, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extractToken(r)
			if err != nil {
				reject(w, err)
				return
			}
			subjectID, err := tokens.Verify(raw)
			if err != nil {
				reject(w, err)
				return
			}
			u, err := store.FindByID(r.Context(), subjectID)
			if err != nil {
				logger.Errorw("failed to resolve token subject", "id", subjectID, "err", err)
				reject(w, err)
				return
			}
			if u == nil {
				reject(w, errUnknownOrDeleted())
				return
			}
			ctx := context.WithValue(r.Context(), profileContextKey, u.Profile())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the signed token out of the Authorization header.
func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperror.New(apperror.KindUnauthorized, "missing authorization header")
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, authScheme) {
		return "", apperror.New(apperror.KindUnauthorized, "invalid authorization scheme")
	}
	raw := strings.TrimSpace(rest)
	if raw == "" {
		return "", apperror.New(apperror.KindUnauthorized, "missing token")
	}
	return raw, nil
}

func reject(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(Envelope{Message: apperror.Message(err)})
}

// ProfileFromContext returns the gate-resolved caller profile.
func ProfileFromContext(ctx context.Context) (entity.PublicProfile, bool) {
	profile, ok := ctx.Value(profileContextKey).(entity.PublicProfile)
	return profile, ok
}
