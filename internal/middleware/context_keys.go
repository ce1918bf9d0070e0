package middleware

import "github.com/gin-gonic/gin"

// performerKey is the key used to store the acting user's ID in the Gin
// context. Authentication is an external concern; the acting user arrives
// on the X-Performed-By header set by the upstream gateway.
const performerKey = contextKey("performer")

const performerHeader = "X-Performed-By"

// PerformerMiddleware captures the acting-user header into the Gin context.
func PerformerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if performer := c.GetHeader(performerHeader); performer != "" {
			c.Set(string(performerKey), performer)
		}
		c.Next()
	}
}

// GetPerformerFromContext retrieves the acting user ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetPerformerFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(performerKey))
	if !exists {
		return "", false
	}
	performer, ok := val.(string)
	if !ok || performer == "" {
		return "", false
	}
	return performer, true
}
