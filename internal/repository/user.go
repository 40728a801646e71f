package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/storage/db"
)

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	CreateUser(ctx context.Context, user model.User) error
	FindUserByUsername(ctx context.Context, username string) (model.User, error)
	UpdateUserToken(ctx context.Context, username, token string) error
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) CreateUser(ctx context.Context, user model.User) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, password, token, created_at, updated_at)
		VALUES (@id, @username, @password, @token, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         user.ID,
		"username":   user.Username,
		"password":   user.Password,
		"token":      user.Token,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r userRepository) FindUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, password, token, deleted_at, created_at, updated_at
		FROM users
		WHERE username = @username
	`, pgx.NamedArgs{"username": username})

	var user model.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Token,
		&user.DeletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}

	return user, nil
}

func (r userRepository) UpdateUserToken(ctx context.Context, username, token string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET token = @token, updated_at = NOW()
		WHERE username = @username
	`, pgx.NamedArgs{
		"username": username,
		"token":    token,
	})
	if err != nil {
		return fmt.Errorf("update user token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
