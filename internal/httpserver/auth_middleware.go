package httpserver

import (
	"context"
	"net/http"
	"strings"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/security"
	"tartanmarket/internal/service"
)

type contextKey string

const (
	userContextKey     contextKey = "currentUser"
	identityContextKey contextKey = "currentIdentity"
)

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context. It is nil for a valid
// token whose identity has not been resolved yet (first sign-in).
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// CurrentIdentity extracts the verified auth-provider claims from context.
func CurrentIdentity(r *http.Request) (service.Identity, bool) {
	if v := r.Context().Value(identityContextKey); v != nil {
		if id, ok := v.(service.Identity); ok {
			return id, true
		}
	}
	return service.Identity{}, false
}

// AuthMiddleware validates the Bearer token and attaches the asserted
// identity, plus the internal user record when one exists, to the context.
// Registration of new users happens in the users/current handler, so this
// middleware does not reject tokens for not-yet-resolved identities.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}
			email, _ := claims["email"].(string)
			name, _ := claims["name"].(string)
			picture, _ := claims["picture"].(string)

			identity := service.Identity{
				Subject:   sub,
				Email:     email,
				Name:      name,
				AvatarURL: picture,
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)

			user, err := users.GetByExternalID(ctx, sub)
			if err != nil {
				http.Error(w, "failed to resolve user", http.StatusInternalServerError)
				return
			}
			if user != nil {
				ctx = WithUser(ctx, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireUser 401s when the token's identity has no user record yet.
func requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := CurrentUser(r)
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return nil
	}
	return user
}
