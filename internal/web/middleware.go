package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nishantrana1982/oneonone/internal/core"
)

const userKey = "user"

// identify resolves the authenticated email to a user. The identity
// provider terminates upstream and forwards the verified address in
// X-User-Email; this layer only maps it to a user row and enforces the
// organization email domain.
func (s *Server) identify(c *gin.Context) {
	email := c.GetHeader("X-User-Email")
	if email == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
		return
	}

	if domain := s.svc.OrgDomain(); domain != "" {
		if !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "email outside the organization domain",
			})
			return
		}
	}

	user, err := s.svc.UserByEmail(email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "unknown user",
		})
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// actor returns the authenticated user set by the identify middleware.
func actor(c *gin.Context) *core.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*core.User)
	return u
}
