package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/serializer"
)

const resourceUserAccount = "user_account"

// ListUsers is never allowed, whoever asks.
func (s *Server) ListUsers(c *gin.Context) {
	AbortWithError(c, ErrForbidden)
}

func (s *Server) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := s.userSvc.GetAccount(ctx, c.Param("username"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	assets, err := s.assetSvc.ListByOwner(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	collections, err := s.collectionSvc.ListByOwner(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.NewUser(serializer.NewLinker(c.Request), user, assets, collections))
}

func (s *Server) CreateUserAccount(c *gin.Context) {
	s.createAccount(c)
}

// createAccount reports an existing username before validating the rest
// of the body.
func (s *Server) createAccount(c *gin.Context) {
	var body serializer.UserAccountWrite
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	if username := body.RequestedUsername(); username != "" {
		exists, err := s.userSvc.UsernameExists(ctx, username)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if exists {
			AbortWithError(c, authdomain.ErrUserExists)
			return
		}
	}

	req, err := body.ToCreate()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	user, err := s.userSvc.CreateAccount(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceUserAccount, "create")
	s.recordAudit(ctx, auditdomain.ActionUserAccountCreate, auditdomain.TargetTypeUser, user.ID.String(), map[string]any{
		"username": user.Username,
	})

	c.JSON(http.StatusCreated, serializer.NewUserAccount(user))
}

func (s *Server) GetUserAccount(c *gin.Context) {
	user, err := s.userSvc.GetAccount(c.Request.Context(), c.Param("username"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.NewUserAccount(user))
}

func (s *Server) ReplaceUserAccount(c *gin.Context) {
	s.updateUserAccount(c, false)
}

func (s *Server) PatchUserAccount(c *gin.Context) {
	s.updateUserAccount(c, true)
}

func (s *Server) updateUserAccount(c *gin.Context, partial bool) {
	var body serializer.UserAccountWrite
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, err := body.ToUpdate(partial)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := s.userSvc.UpdateAccount(ctx, c.Param("username"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceUserAccount, "update")
	s.recordAudit(ctx, auditdomain.ActionUserAccountUpdate, auditdomain.TargetTypeUser, user.ID.String(), map[string]any{
		"username": user.Username,
		"partial":  partial,
	})

	c.JSON(http.StatusOK, serializer.NewUserAccount(user))
}
