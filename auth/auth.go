// Package auth verifies bearer tokens issued by the identity provider and
// exposes the caller's identity to handlers.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rental-quotes/models"
)

// RoleAdmin is the role required by back-office routes
const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Performer returns the identity as recorded on audited actions
func (i Identity) Performer() models.Performer {
	return models.Performer{ID: i.ID, Name: i.Name, Email: i.Email}
}

// Claims are the token claims the service reads
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens signed with a shared secret
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and returns the identity it carries
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

// Issue signs a token for identity. Used by tests and the support CLI.
func (v *Verifier) Issue(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type contextKey struct{}

// WithIdentity stores identity in ctx
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// FromContext returns the identity set by Middleware
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	return identity, ok
}

// Middleware requires a valid bearer token and, when roles are given, one of those roles
func Middleware(v *Verifier, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeError(w, http.StatusUnauthorized, "Bearer token required")
				return
			}

			identity, err := v.Verify(tokenString)
			if err != nil {
				log.Printf("❌ Auth: Rejected token for %s %s: %v", r.Method, r.URL.Path, err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if len(allowedRoles) > 0 {
				roleAllowed := false
				for _, role := range allowedRoles {
					if role == identity.Role {
						roleAllowed = true
						break
					}
				}
				if !roleAllowed {
					log.Printf("❌ Auth: User %s with role %q denied %s %s", identity.ID, identity.Role, r.Method, r.URL.Path)
					writeError(w, http.StatusForbidden, "Access denied")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
