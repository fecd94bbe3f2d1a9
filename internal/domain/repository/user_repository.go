package repository

import "github.com/quicktalk/quicktalk/internal/domain/entity"

// UserRepository defines the interface for account persistence.
// Create must fail with a conflict error when username or email is
// already taken, even under concurrent registration.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id int64) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	SetVerified(email string) error
	UpdatePassword(email, passwordHash string) error
}
