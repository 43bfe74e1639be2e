package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smart-blog-api/internal/model"
	"smart-blog-api/internal/repository"
	"smart-blog-api/pkg/apierror"
)

func requireAPIError(t *testing.T, err error, code string, status int) *apierror.APIError {
	t.Helper()
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Code)
	assert.Equal(t, status, apiErr.HTTPStatus)
	return apiErr
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		store := new(repository.MockUserStore)
		creds := newTestCredentials(t, &fakeClock{t: time.Now()})
		svc := NewAuthService(store, creds)

		store.On("FindByEmail", ctx, "ada@example.com").Return(model.User{}, model.ErrUserNotFound)
		store.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.Email == "ada@example.com" &&
				u.Name == "Ada" &&
				creds.VerifyPassword("pw", u.PasswordHash)
		})).Return(nil)

		resp, err := svc.Signup(ctx, model.SignupRequest{Email: " ada@example.com ", Password: "pw", Name: " Ada "})
		require.NoError(t, err)

		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, "ada@example.com", resp.User.Email)
		assert.Equal(t, "Ada", resp.User.Name)
		_, err = uuid.Parse(resp.User.ID)
		assert.NoError(t, err)

		sub, err := creds.VerifyToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, sub)

		store.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, newTestCredentials(t, &fakeClock{t: time.Now()}))

		store.On("FindByEmail", ctx, "ada@example.com").Return(model.User{ID: "existing"}, nil)

		_, err := svc.Signup(ctx, model.SignupRequest{Email: "ada@example.com", Password: "pw", Name: "Ada"})
		apiErr := requireAPIError(t, err, "CONFLICT", 400)
		assert.Equal(t, "Email already registered", apiErr.Message)

		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email lost race", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, newTestCredentials(t, &fakeClock{t: time.Now()}))

		store.On("FindByEmail", ctx, "ada@example.com").Return(model.User{}, model.ErrUserNotFound)
		store.On("Create", ctx, mock.Anything).Return(model.ErrEmailTaken)

		_, err := svc.Signup(ctx, model.SignupRequest{Email: "ada@example.com", Password: "pw", Name: "Ada"})
		requireAPIError(t, err, "CONFLICT", 400)
	})

	t.Run("validation", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, newTestCredentials(t, &fakeClock{t: time.Now()}))

		cases := []model.SignupRequest{
			{Email: "", Password: "pw", Name: "Ada"},
			{Email: "ada@example.com", Password: "", Name: "Ada"},
			{Email: "ada@example.com", Password: "pw", Name: "  "},
			{Email: "not-an-email", Password: "pw", Name: "Ada"},
			{Email: "Ada <ada@example.com>", Password: "pw", Name: "Ada"},
		}
		for _, req := range cases {
			_, err := svc.Signup(ctx, req)
			requireAPIError(t, err, "BAD_REQUEST", 400)
		}

		store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("store failure passes through", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, newTestCredentials(t, &fakeClock{t: time.Now()}))

		boom := errors.New("db down")
		store.On("FindByEmail", ctx, "ada@example.com").Return(model.User{}, boom)

		_, err := svc.Signup(ctx, model.SignupRequest{Email: "ada@example.com", Password: "pw", Name: "Ada"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	creds := newTestCredentials(t, &fakeClock{t: time.Now()})

	hash, err := creds.HashPassword("pw")
	require.NoError(t, err)
	user := model.User{ID: uuid.NewString(), Email: "ada@example.com", PasswordHash: hash, Name: "Ada", CreatedAt: time.Now().UTC()}

	t.Run("success", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, creds)
		store.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)

		resp, err := svc.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, creds)
		store.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
		store.On("FindByEmail", ctx, "nobody@example.com").Return(model.User{}, model.ErrUserNotFound)

		_, wrongPassword := svc.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "nope"})
		_, unknownEmail := svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "pw"})

		first := requireAPIError(t, wrongPassword, "UNAUTHORIZED", 401)
		second := requireAPIError(t, unknownEmail, "UNAUTHORIZED", 401)
		assert.Equal(t, first.Message, second.Message)
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	creds := newTestCredentials(t, &fakeClock{t: time.Now()})
	id := uuid.NewString()

	t.Run("found", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, creds)
		store.On("FindByID", ctx, id).Return(model.User{ID: id, Email: "ada@example.com", PasswordHash: "h", Name: "Ada"}, nil)

		u, err := svc.CurrentUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "Ada", u.Name)
	})

	t.Run("malformed id", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, creds)

		_, err := svc.CurrentUser(ctx, "123")
		requireAPIError(t, err, "BAD_REQUEST", 400)
		store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("deleted user", func(t *testing.T) {
		store := new(repository.MockUserStore)
		svc := NewAuthService(store, creds)
		store.On("FindByID", ctx, id).Return(model.User{}, model.ErrUserNotFound)

		_, err := svc.CurrentUser(ctx, id)
		requireAPIError(t, err, "NOT_FOUND", 404)
	})
}
