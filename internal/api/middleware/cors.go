package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nexorasim/entitlement/internal/config"
)

// The API is a bearer-token service consumed by carrier self-service portals:
// browsers only ever GET status or POST lifecycle operations with a JSON body,
// and cookies are never involved, so credentials are not allowed cross-origin.
const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type"
	corsMaxAge       = "600"
)

// CORS returns a middleware that admits the configured portal origins.
// Production refuses to start without an explicit origin list; elsewhere an
// empty list reflects any origin so local portals work against a dev server.
func CORS(portalOrigins []string, env config.Environment) gin.HandlerFunc {
	if len(portalOrigins) == 0 {
		if env == config.EnvProduction {
			panic("CORS_ORIGINS must list the portal origins in production")
		}
		log.Println("WARNING: CORS_ORIGINS is empty, reflecting all origins (dev only)")
	}

	reflectAll := len(portalOrigins) == 0
	origins := make(map[string]struct{}, len(portalOrigins))
	for _, o := range portalOrigins {
		origins[strings.ToLower(o)] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			// Same-origin or non-browser caller.
			c.Next()
			return
		}

		// Responses differ by Origin even for disallowed callers.
		c.Header("Vary", "Origin")

		allowed := reflectAll
		if !allowed {
			_, allowed = origins[strings.ToLower(origin)]
		}

		if c.Request.Method == http.MethodOptions {
			if !allowed {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Next()
	}
}
