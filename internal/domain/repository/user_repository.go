package repository

import (
	"errors"

	"github.com/oksasatya/api-profiles/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert hits the unique email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for account persistence.
// All email parameters are expected to be normalized (lowercase) by the caller.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Update(u *entity.User) error
	Delete(id string) error
}
