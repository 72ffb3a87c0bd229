// internal/auth/middleware.go
// JWT authentication middleware. Token issuance lives in the identity
// service; this API only validates already-issued access tokens.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/nearmeet/nearmeet-backend/internal/common/utils"
)

// Middleware provides authentication middleware
type Middleware struct {
	jwtSecret string
	redis     *redis.Client // optional; enables revocation checks
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret string, redisClient *redis.Client) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
		redis:     redisClient,
	}
}

// Authenticate verifies the JWT token and adds the user ID to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract token from Authorization header
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		// 2. Validate token
		claims, err := utils.ValidateJWT(token, m.jwtSecret)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// 3. Check if it's an access token (not refresh)
		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		// 4. Reject revoked tokens when Redis is available
		if m.redis != nil {
			revoked, err := m.redis.Exists(r.Context(), "auth:revoked:"+token).Result()
			if err == nil && revoked > 0 {
				utils.RespondWithError(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}
		}

		// 5. Add user ID to request context
		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate adds user context if a valid token is present,
// but doesn't fail if missing
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := utils.ValidateJWT(token, m.jwtSecret)
		if err == nil && claims.Type == "access" {
			ctx := context.WithValue(r.Context(), "userID", claims.UserID)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func (m *Middleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// GetUserIDFromContext extracts the user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value("userID").(string)
	return userID, ok
}
