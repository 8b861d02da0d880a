package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/kpi/internal/authentication"
	obscontext "github.com/smallbiznis/kpi/internal/observability/context"
)

// Authenticate resolves the Authorization header into the request principal.
func (s *Server) Authenticate(a authentication.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		principal, err := a.Authenticate(ctx, c.GetHeader("Authorization"))
		if err != nil {
			s.obsMetrics.RecordAuthentication(ctx, "unknown", "failure")
			AbortWithError(c, err)
			return
		}
		s.obsMetrics.RecordAuthentication(ctx, principal.Subject(), "success")

		ctx = authentication.WithPrincipal(ctx, principal)
		if !principal.IsAnonymous() {
			ctx = obscontext.WithActor(ctx, principal.Subject(), principal.ID())
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize refuses the request unless the principal may perform action on object.
func (s *Server) Authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := s.authzSvc.Authorize(ctx, authentication.FromContext(ctx), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) authentication.Principal {
	return authentication.FromContext(c.Request.Context())
}

// ownerID is the id of the authenticated user; zero for other principals.
func ownerID(c *gin.Context) snowflake.ID {
	p := principal(c)
	if !p.IsUser() {
		return 0
	}
	return p.User.ID
}
