package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerRequest(email, username string) types.RegisterRequest {
	return types.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct-horse",
	}
}

func TestRegister(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewUserService(db)
	ctx := context.Background()

	view, err := svc.Register(ctx, registerRequest("  Ada@Example.COM ", "ada"))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", view.Email)
	assert.Equal(t, "ada", view.Username)
	assert.False(t, view.IsSubscribed)

	_, err = svc.Register(ctx, registerRequest("ada@example.com", "ada2"))
	requireValidation(t, err, service.CodeDuplicateUser, "email")

	_, err = svc.Register(ctx, registerRequest("other@example.com", "ada"))
	requireValidation(t, err, service.CodeDuplicateUser, "username")
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("me@example.com", "me"))
	requireValidation(t, err, service.CodeReservedUsername, "username")

	_, err = svc.Register(ctx, registerRequest("me@example.com", "ME"))
	requireValidation(t, err, service.CodeReservedUsername, "username")

	_, err = svc.Register(ctx, registerRequest("", "someone"))
	requireValidation(t, err, service.CodeMissingField, "email")

	_, err = svc.Register(ctx, registerRequest("not-an-email", "someone"))
	requireValidation(t, err, service.CodeInvalidValue, "email")

	req := registerRequest("ok@example.com", "someone")
	req.Password = "short"
	_, err = svc.Register(ctx, req)
	requireValidation(t, err, service.CodeInvalidValue, "password")
}

func TestGetUserSubscriptionFlag(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db)
	subs := service.NewSubscriptionService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")

	_, err := subs.Subscribe(ctx, reader.ID, author.ID, 0)
	require.NoError(t, err)

	view, err := users.GetUser(ctx, &reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)

	view, err = users.GetUser(ctx, nil, author.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)

	_, err = users.GetUser(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	list, total, err := users.ListUsers(ctx, &reader.ID, types.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.Equal(t, u.ID == author.ID, u.IsSubscribed)
	}
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db)
	auth := service.NewAuthService(db, "test-secret", 0, nil)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, "cook")

	err := users.SetPassword(ctx, user.ID, types.SetPasswordRequest{CurrentPassword: "wrong-one", NewPassword: "brand-new-pass"})
	requireValidation(t, err, service.CodeWrongPassword, "current_password")

	err = users.SetPassword(ctx, user.ID, types.SetPasswordRequest{CurrentPassword: testhelpers.TestPassword, NewPassword: "brand-new-pass"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, types.LoginRequest{Email: user.Email, Password: testhelpers.TestPassword})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, types.LoginRequest{Email: user.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)
}
