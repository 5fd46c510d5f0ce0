package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"surveychat/internal/observability"
	"surveychat/internal/transport/http/response"
)

// CORS enforces the origin allow-list. A disallowed origin gets a 403
// without CORS headers, which forces the browser to block the response.
// A single "*" entry allows every origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
	}

	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")

		if !wildcard && !originAllowed(origin, allowedOrigins) {
			observability.FromContext(c.Request.Context()).Warn("origin not allowed", "origin", origin)
			response.Error(c, http.StatusForbidden, "Origin not allowed")
			c.Abort()
			return
		}

		allowValue := origin
		if wildcard {
			allowValue = "*"
		}
		c.Header("Access-Control-Allow-Origin", allowValue)
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "POST,GET,OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.JSON(http.StatusOK, gin.H{"message": "CORS preflight successful"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// originAllowed matches by prefix so an allow-list entry covers any path
// under the same origin.
func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, candidate := range allowed {
		if candidate != "" && strings.HasPrefix(origin, candidate) {
			return true
		}
	}
	return false
}
