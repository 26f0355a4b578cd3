package authorization

import (
	"context"
	"errors"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidRole = errors.New("invalid_role")
)

// Service answers capability checks for staff accounts. Policies are
// role-based and persisted through the casbin gorm adapter, so grants survive
// restarts and can be extended without a deploy.
type Service interface {
	Authorize(ctx context.Context, role, object, action string) error
}
