package authorization

import (
	"context"
	"errors"

	"github.com/smallbiznis/kpi/internal/authentication"
)

type Service interface {
	// Authorize returns ErrForbidden unless the principal may perform action
	// on object.
	Authorize(ctx context.Context, principal authentication.Principal, object string, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
