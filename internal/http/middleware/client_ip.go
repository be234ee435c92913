package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// ClientIP resolves the caller's address with priority CF-Connecting-IP →
// X-Forwarded-For (first hop) → socket peer, and stores it for Usage-row
// builders to read explicitly — never through a package-level variable.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, resolveClientIP(c))
		c.Next()
	}
}

func resolveClientIP(c *gin.Context) string {
	if v := c.GetHeader("CF-Connecting-IP"); v != "" {
		return v
	}
	if v := c.GetHeader("X-Forwarded-For"); v != "" {
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		return strings.TrimSpace(v)
	}
	return c.ClientIP()
}

// GetClientIP returns the address ClientIP resolved for this request.
func GetClientIP(c *gin.Context) string {
	v, _ := c.Get(clientIPKey)
	s, _ := v.(string)
	return s
}
