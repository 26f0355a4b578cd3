package server

import (
	"github.com/gin-gonic/gin"

	authdomain "github.com/sightcare/netra/internal/auth/domain"
)

// RequireCapability enforces a role policy for the signed-in user. It runs
// after WebAuthRequired, which stores the user on the gin context.
func (s *Server) RequireCapability(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeAction(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeAction(c *gin.Context, object string, action string) error {
	raw, ok := c.Get(contextUserKey)
	if !ok {
		return ErrUnauthorized
	}
	user, ok := raw.(authdomain.User)
	if !ok {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(c.Request.Context(), user.Role, object, action)
}
