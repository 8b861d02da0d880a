package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/authentication"
	"github.com/smallbiznis/kpi/internal/observability/logger"
	onetimekeydomain "github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/internal/serializer"
	"go.uber.org/zap"
)

const (
	resourceOneTimeKey    = "one_time_key"
	endpointRedeemOTK     = "one_time_key_redeem"
	rateLimitReasonRedeem = "client-rate"
)

// CreateApplicationUser creates an account on behalf of an authorized
// application. Users, staff included, are refused.
func (s *Server) CreateApplicationUser(c *gin.Context) {
	if !principal(c).IsApplication() {
		AbortWithError(c, ErrForbidden)
		return
	}
	s.createAccount(c)
}

func (s *Server) IssueOneTimeKey(c *gin.Context) {
	if !principal(c).IsApplication() {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req serializer.OneTimeKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	user, err := s.userSvc.GetAccount(ctx, req.Username)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			err = onetimekeydomain.ErrInvalidUser
		}
		AbortWithError(c, err)
		return
	}

	key, err := s.oneTimeKeySvc.Issue(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordResourceWrite(ctx, resourceOneTimeKey, "create")
	s.recordAudit(ctx, auditdomain.ActionOneTimeKeyIssue, auditdomain.TargetTypeOneTimeKey, key.ID.String(), map[string]any{
		"username": user.Username,
		"key":      key.Key,
	})

	c.JSON(http.StatusCreated, serializer.NewOneTimeKey(user.Username, key))
}

// RedeemOneTimeKey exchanges an unexpired key for its user's bearer token.
// The key is consumed whether or not it had expired.
func (s *Server) RedeemOneTimeKey(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := s.redeemLimiter.Allow(ctx, c.ClientIP())
	if err != nil {
		logger.FromContext(ctx).Warn("one-time key redemption rate limit check failed", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	if !result.Allowed {
		logger.FromContext(ctx).Warn("one-time key redemption rate limit exceeded",
			zap.String("endpoint", endpointRedeemOTK),
		)
		s.obsMetrics.RecordRateLimitDenied(ctx, endpointRedeemOTK, rateLimitReasonRedeem)
		c.Header("Retry-After", retryAfterSeconds(result.RetryAfter.Seconds()))
		AbortWithError(c, ErrRateLimited)
		return
	}
	s.obsMetrics.RecordRateLimitAllowed(ctx, endpointRedeemOTK)

	var req serializer.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	key, err := s.oneTimeKeySvc.Redeem(ctx, req.Key)
	if err != nil {
		if errors.Is(err, onetimekeydomain.ErrInvalidKey) {
			err = authentication.ErrInvalidToken
		}
		AbortWithError(c, err)
		return
	}

	user, err := s.userSvc.GetByID(ctx, key.UserID)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			err = authentication.ErrInvalidToken
		}
		AbortWithError(c, err)
		return
	}
	if !user.IsActive {
		AbortWithError(c, authentication.ErrUserInactive)
		return
	}
	token, err := s.userSvc.TokenForUser(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(ctx, auditdomain.ActionOneTimeKeyRedeem, auditdomain.TargetTypeOneTimeKey, key.ID.String(), map[string]any{
		"username": user.Username,
	})

	c.JSON(http.StatusOK, serializer.RedeemedToken{Username: user.Username, Token: token.Key})
}

func retryAfterSeconds(seconds float64) string {
	if seconds < 1 {
		return "1"
	}
	return strconv.Itoa(int(seconds + 0.5))
}
