package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/catalog/internal/config"
	obsmiddleware "github.com/smallbiznis/catalog/internal/observability/logger"
)

// CORS answers preflight requests and decorates cross-origin responses for the configured origins.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]string, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
			break
		}
		allowed[strings.ToLower(o)] = o
	}
	// A wildcard cannot be combined with credentials; echo the origin instead.
	echoAny := allowAll && cfg.AllowCredentials

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	if allowMethods == "" {
		allowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"
	}
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Writer.Header().Add("Vary", "Origin")
			c.Next()
			return
		}

		allowOrigin := matchOrigin(origin, allowAll, echoAny, allowed)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h := c.Writer.Header()
			h.Add("Vary", "Origin")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")

			if allowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", allowOrigin)
				h.Set("Access-Control-Allow-Methods", allowMethods)
				if allowHeaders != "" {
					h.Set("Access-Control-Allow-Headers", allowHeaders)
				} else if rh := c.GetHeader("Access-Control-Request-Headers"); rh != "" {
					h.Set("Access-Control-Allow-Headers", rh)
				}
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Writer.Header().Add("Vary", "Origin")
		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Expose-Headers", obsmiddleware.HeaderRequestID)
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}
		c.Next()
	}
}

func matchOrigin(origin string, allowAll, echoAny bool, allowed map[string]string) string {
	switch {
	case echoAny:
		return origin
	case allowAll:
		return "*"
	}
	if orig, ok := allowed[strings.ToLower(origin)]; ok {
		return orig
	}
	return ""
}
