package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UserIDHeader identifies the shopper when bearer auth is not in use.
const UserIDHeader = "X-User-ID"

const maxUserIDLen = 128

type contextKeyType string

const userIDKey contextKeyType = "user_id"

var (
	errMissingToken = errors.New("missing bearer token")
	errNoSubject    = errors.New("token has no subject")
)

// IdentityConfig controls how Identity resolves the caller.
type IdentityConfig struct {
	// JWTSecret enables HS256 bearer tokens. When empty only the
	// X-User-ID header is consulted.
	JWTSecret string
	Logger    *slog.Logger
}

// Identity resolves the caller's user ID from a bearer JWT (user_id or sub
// claim) or, when no secret is configured, from the X-User-ID header. A
// present but invalid token is rejected; a missing identity is not, so public
// routes keep working. Use RequireUser on routes that need one.
func Identity(cfg IdentityConfig) func(http.Handler) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string

			if cfg.JWTSecret != "" {
				id, err := userIDFromBearer(r.Header.Get("Authorization"), cfg.JWTSecret)
				switch {
				case errors.Is(err, errMissingToken):
				case err != nil:
					l.WarnContext(r.Context(), "invalid bearer token",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
					return
				default:
					userID = id
				}
			} else {
				userID = strings.TrimSpace(r.Header.Get(UserIDHeader))
			}

			if len(userID) > maxUserIDLen {
				writeError(w, http.StatusBadRequest, "INVALID_INPUT", "user id is too long")
				return
			}
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("enduser.id", userID))
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// RequireUser rejects requests that Identity could not attribute to a user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromContext(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromBearer(header, secret string) (string, error) {
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}

	parsed, err := jwt.Parse(strings.TrimSpace(token), func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errNoSubject
	}
	if id, _ := claims["user_id"].(string); id != "" {
		return id, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", errNoSubject
}

// WithUserID stores the resolved user ID in ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the user ID resolved by Identity.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
