package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/auth"
)

// claimsKey is the context key the verified caller identity is stored under.
const claimsKey = "auth_claims"

// RequireAuth returns a middleware that validates the bearer token on every
// request and stores the caller's claims in the request context.
func RequireAuth(verifier auth.Verifier, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth_middleware").Logger()

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Caller returns the verified claims for the request, or nil when the route
// is unauthenticated.
func Caller(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// CallerID returns the verified subject, falling back to "anonymous" on
// unauthenticated routes so audit entries always carry a user.
func CallerID(c *gin.Context) string {
	if claims := Caller(c); claims != nil {
		return claims.Subject
	}
	return "anonymous"
}
