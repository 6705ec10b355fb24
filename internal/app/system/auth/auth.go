// Package auth exchanges bearer credentials for a stable user identity.
//
// Token issuance and verification belong to the identity provider; this
// package only consumes a "verify token, get claims" capability. Every
// store operation is scoped by the verified subject id, so the middleware
// here is the single authorization boundary: there is no second ownership
// check deeper in the stack.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/markloft/internal/app/system/respond"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

// Claims is the identity extracted from a verified token.
type Claims struct {
	UserID        string // provider subject, the ownership scope for all data
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// TokenVerifier validates a bearer credential and returns its claims.
// Implementations fail closed: any invalid, expired, or malformed input
// is an error, never a partial Claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// GoogleVerifier verifies Google-issued ID tokens against a client ID.
type GoogleVerifier struct {
	Audience string
}

// NewGoogleVerifier returns a verifier for ID tokens minted for clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{Audience: clientID}
}

// Verify checks signature, expiry and audience, then maps the payload to
// Claims.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	payload, err := idtoken.Validate(ctx, token, g.Audience)
	if err != nil {
		return nil, err
	}

	claims := &Claims{UserID: payload.Subject}
	if v, ok := payload.Claims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		claims.Name = v
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		claims.Picture = v
	}
	if v, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = v
	}
	return claims, nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the verified claims placed in the request context
// by RequireUser, and whether they are present.
func CurrentUser(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(currentUserKey).(*Claims)
	return c, ok
}

// WithUser returns a request whose context carries the given claims.
// Exposed for handler tests.
func WithUser(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, c))
}

// BearerToken extracts the credential from an Authorization header.
// Returns "" when the header is absent or not a Bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireUser verifies the request's bearer token and injects the claims
// into context. Missing or unverifiable credentials answer 401 with the
// UNAUTHORIZED envelope; the request never reaches the handler.
func RequireUser(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				respond.Unauthenticated(w, "No authorization token provided")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("token verification failed", zap.Error(err))
				respond.Unauthenticated(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, WithUser(r, claims))
		})
	}
}
