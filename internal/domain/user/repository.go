package user

import (
	"context"
)

// Directory resolves users by id or role. Role membership is read on every
// call and must not be cached by implementations.
type Directory interface {
	GetByID(ctx context.Context, id string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
}
