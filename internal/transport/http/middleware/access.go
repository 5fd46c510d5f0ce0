package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"surveychat/internal/pkg/jwtutil"
	"surveychat/internal/transport/http/response"
)

const ContextOwnerIDKey = "owner_id"

// ParticipantToken validates a signed participant token and stores its
// subject for the handler to compare against the payload user_id. Only
// installed when the deployment requires tokens.
func ParticipantToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextOwnerIDKey, claims.Subject)
		c.Next()
	}
}

// AccessGate is the owner allow-list of the original deployment: a flat
// set of permitted user ids, enforced only for requests arriving from
// non-trusted origins.
type AccessGate struct {
	allowedOwners  map[string]struct{}
	trustedOrigins []string
}

func NewAccessGate(allowedOwnerIDs, trustedOrigins []string) *AccessGate {
	owners := make(map[string]struct{}, len(allowedOwnerIDs))
	for _, id := range allowedOwnerIDs {
		owners[id] = struct{}{}
	}
	return &AccessGate{
		allowedOwners:  owners,
		trustedOrigins: trustedOrigins,
	}
}

// Allows reports whether ownerID may use the service from origin. An
// empty allow-list permits everyone; trusted origins bypass the list.
func (g *AccessGate) Allows(origin, ownerID string) bool {
	if len(g.allowedOwners) == 0 {
		return true
	}
	for _, trusted := range g.trustedOrigins {
		if trusted != "" && strings.HasPrefix(origin, trusted) {
			return true
		}
	}
	_, ok := g.allowedOwners[ownerID]
	return ok
}

// OwnerFromContext returns the token subject set by ParticipantToken.
func OwnerFromContext(c *gin.Context) (string, bool) {
	ownerAny, exists := c.Get(ContextOwnerIDKey)
	if !exists {
		return "", false
	}
	owner, ok := ownerAny.(string)
	return owner, ok
}
