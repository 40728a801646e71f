package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/lmdl25/kenility-challenge/internal/apperr"
	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/internal/repository"
)

const bcryptCost = 12

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

type CreateUserParams struct {
	Username string
	Password string
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResult struct {
	Token string `json:"token"`
}

type UserService interface {
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
	Login(ctx context.Context, params LoginParams) (LoginResult, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

func NewUserService(userRepo repository.UserRepository, tokens TokenIssuer) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// CreateUser registers an account with a bcrypt-hashed password. A duplicate
// username is reported as a bad request; the unique constraint backs the
// pre-check for concurrent registrations.
func (s *userService) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	if _, err := s.userRepo.FindUserByUsername(ctx, params.Username); err == nil {
		return model.User{}, apperr.UsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.UserCreateFailed.WrapParent(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:        id,
		Username:  params.Username,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.User{}, apperr.UsernameTaken
		}
		return model.User{}, apperr.UserCreateFailed.WrapParent(err)
	}

	return user, nil
}

// Login verifies the password and issues a bearer token, persisting the
// token on the user row.
func (s *userService) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, apperr.InvalidCredentials
		}
		return LoginResult{}, apperr.LoginFailed.WrapParent(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(params.Password)); err != nil {
		return LoginResult{}, apperr.InvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return LoginResult{}, apperr.LoginFailed.WrapParent(err)
	}

	if err := s.userRepo.UpdateUserToken(ctx, user.Username, token); err != nil {
		return LoginResult{}, apperr.LoginFailed.WrapParent(err)
	}

	return LoginResult{Token: token}, nil
}
