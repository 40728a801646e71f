package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lmdl25/kenility-challenge/internal/model"
	"github.com/lmdl25/kenility-challenge/pkg/zerror"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password before persisting", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		svc := NewUserService(userRepo, &fakeTokenIssuer{token: "tok"})

		user, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "ada",
			Password: "Secret1!",
		})
		require.NoError(t, err)

		assert.Equal(t, "ada", user.Username)
		assert.NotEqual(t, "Secret1!", user.Password)
		require.Len(t, userRepo.created, 1)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(userRepo.created[0].Password), []byte("Secret1!")))
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		userRepo := newFakeUserRepo(model.User{Username: "ada"})
		svc := NewUserService(userRepo, &fakeTokenIssuer{token: "tok"})

		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "ada",
			Password: "Secret1!",
		})

		requireZError(t, err, zerror.StatusBadRequest, "USERNAME_TAKEN")
		assert.Empty(t, userRepo.created)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	registeredUser := func(t *testing.T, password string) model.User {
		t.Helper()
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		return model.User{Username: "ada", Password: string(hashed)}
	}

	t.Run("valid credentials issue and persist a token", func(t *testing.T) {
		userRepo := newFakeUserRepo(registeredUser(t, "Secret1!"))
		svc := NewUserService(userRepo, &fakeTokenIssuer{token: "signed-token"})

		result, err := svc.Login(ctx, LoginParams{Username: "ada", Password: "Secret1!"})
		require.NoError(t, err)

		assert.Equal(t, "signed-token", result.Token)
		assert.Equal(t, "signed-token", userRepo.tokens["ada"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		userRepo := newFakeUserRepo(registeredUser(t, "Secret1!"))
		svc := NewUserService(userRepo, &fakeTokenIssuer{token: "signed-token"})

		_, err := svc.Login(ctx, LoginParams{Username: "ada", Password: "wrong"})

		requireZError(t, err, zerror.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("unknown username is unauthorized not not-found", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &fakeTokenIssuer{token: "signed-token"})

		_, err := svc.Login(ctx, LoginParams{Username: "ghost", Password: "whatever"})

		requireZError(t, err, zerror.StatusUnauthorized, "INVALID_CREDENTIALS")
	})

	t.Run("token issue failure is internal", func(t *testing.T) {
		userRepo := newFakeUserRepo(registeredUser(t, "Secret1!"))
		svc := NewUserService(userRepo, &fakeTokenIssuer{err: errors.New("no key")})

		_, err := svc.Login(ctx, LoginParams{Username: "ada", Password: "Secret1!"})

		requireZError(t, err, zerror.StatusInternalServerError, "LOGIN_FAILED")
	})
}
