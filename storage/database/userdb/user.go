package userdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/youwenshao/staffroom/core/user"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type dbUser struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		usr.Username, usr.PasswordHash, usr.Role, usr.CreatedAt,
	).Scan(&usr.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by username")
	}
	return u.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, role = $3 WHERE id = $1`,
		usr.ID, usr.PasswordHash, usr.Role)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
