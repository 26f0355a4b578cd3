package server

import (
	"github.com/gin-gonic/gin"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	"github.com/sightcare/netra/internal/auditctx"
)

const (
	contextUserIDKey = "user_id"
	contextUserKey   = "user"
)

// WebAuthRequired gates staff routes on a valid session cookie.
func (s *Server) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authSvc.ValidateSession(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		ctx = auditctx.WithActorType(ctx, string(auditdomain.ActorTypeUser))
		ctx = auditctx.WithActorID(ctx, user.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Set(contextUserIDKey, user.ID.String())
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// IntakeRateLimit throttles the public pledge intake per client IP. It fails
// open when redis is unreachable so an infra outage never blocks pledges.
func (s *Server) IntakeRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.intakeLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.intakeLimiter.AllowIP(c.Request.Context(), c.ClientIP())
		if err != nil {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "intake", "error")
			}
			c.Next()
			return
		}
		if !result.Allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "intake", "limited")
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		if s.obsMetrics != nil {
			s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), "intake")
		}
		c.Next()
	}
}
