package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appdomain "github.com/smallbiznis/kpi/internal/application/domain"
	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/authentication"
	"github.com/smallbiznis/kpi/internal/authorization"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	onetimekeydomain "github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/internal/serializer"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"github.com/smallbiznis/kpi/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

const (
	msgPermissionDenied = "You do not have permission to perform this action."
	msgNotFound         = "Not found."
	msgUsernameExists   = "Username already exists."
	msgInvalidCursor    = "Invalid cursor"
	msgThrottled        = "Request was throttled."
)

// ErrorHandlingMiddleware renders the last handler error. Authentication
// failures are challenged with keyword.
func ErrorHandlingMiddleware(keyword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", keyword)
		}
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// classifyErrorForLog reports the error type and code for request logs.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var fieldErr *serializer.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: fieldErr.Field, Code: fieldErr.Code, Message: fieldErr.Message},
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err, code),
					Code:    code,
					Message: validationErrorMessage(err),
				},
			},
		}
	}

	var authErr *authentication.Error
	if errors.As(err, &authErr) {
		return http.StatusUnauthorized, errorPayload{
			Type:    "authentication_failed",
			Message: authErr.Detail,
		}
	}

	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "permission_denied",
			Message: msgPermissionDenied,
		}
	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: msgUsernameExists,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: msgNotFound,
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "throttled",
			Message: msgThrottled,
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidCursor),
		errors.Is(err, authdomain.ErrInvalidUsername),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidFirstName),
		errors.Is(err, authdomain.ErrInvalidLastName),
		errors.Is(err, appdomain.ErrInvalidName),
		errors.Is(err, appdomain.ErrInvalidKey),
		errors.Is(err, assetdomain.ErrInvalidName),
		errors.Is(err, assetdomain.ErrInvalidContent),
		errors.Is(err, assetdomain.ErrInvalidSettings),
		errors.Is(err, assetdomain.ErrInvalidCollection),
		errors.Is(err, collectiondomain.ErrInvalidName),
		errors.Is(err, tagdomain.ErrInvalidName),
		errors.Is(err, onetimekeydomain.ErrInvalidUser):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, appdomain.ErrNotFound),
		errors.Is(err, assetdomain.ErrNotFound),
		errors.Is(err, collectiondomain.ErrNotFound),
		errors.Is(err, tagdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, pagination.ErrInvalidCursor):
		return "invalid_cursor"
	case errors.Is(err, assetdomain.ErrInvalidCollection):
		return "does_not_exist"
	default:
		return "invalid"
	}
}

func validationErrorField(err error, code string) string {
	switch {
	case errors.Is(err, tagdomain.ErrInvalidName):
		return "tags"
	case errors.Is(err, pagination.ErrInvalidCursor):
		return serializer.PageTokenParam
	case errors.Is(err, onetimekeydomain.ErrInvalidUser):
		return "username"
	}
	name := err.Error()
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(name, "invalid_") {
		return strings.TrimPrefix(name, "invalid_")
	}
	return ""
}

func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid request"
	case errors.Is(err, pagination.ErrInvalidCursor):
		return msgInvalidCursor
	case errors.Is(err, authdomain.ErrInvalidUsername):
		return authdomain.UsernameInvalidMessage
	case errors.Is(err, authdomain.ErrInvalidEmail):
		return "Enter a valid email address."
	case errors.Is(err, assetdomain.ErrInvalidCollection):
		return serializer.MsgObjectMissing
	case errors.Is(err, assetdomain.ErrInvalidContent),
		errors.Is(err, assetdomain.ErrInvalidSettings):
		return serializer.MsgInvalidJSON
	case errors.Is(err, onetimekeydomain.ErrInvalidUser):
		return serializer.MsgObjectMissing
	default:
		return "invalid value"
	}
}
