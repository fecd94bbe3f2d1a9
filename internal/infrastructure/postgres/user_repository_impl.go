package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
	"github.com/quicktalk/quicktalk/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, first_name, last_name, password_hash,
	gender, date_of_birth, country_of_origin, email_verified, created_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Gender, &u.DateOfBirth, &u.CountryOfOrigin,
		&u.EmailVerified, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// mapCreateError turns a unique violation from the insert into the
// repository's conflict errors. The constraint name tells username and
// email apart; anything else passes through untouched.
func mapCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return repository.ErrDuplicateEmail
		}
		return repository.ErrDuplicateUsername
	}
	return err
}

// Create inserts the account. Unique-violation races on username or
// email come back as the repository's conflict errors; the constraint
// name tells the two apart.
func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash,
			gender, date_of_birth, country_of_origin, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.Gender, u.DateOfBirth, u.CountryOfOrigin, u.EmailVerified)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return mapCreateError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(id int64) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(username string) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) SetVerified(email string) error {
	res, err := r.pool.Exec(context.Background(),
		`UPDATE users SET email_verified = TRUE WHERE email = $1`, email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(email, passwordHash string) error {
	res, err := r.pool.Exec(context.Background(),
		`UPDATE users SET password_hash = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
