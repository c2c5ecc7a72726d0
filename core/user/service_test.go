package user_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youwenshao/staffroom/core"
	"github.com/youwenshao/staffroom/core/user"
	emailsvc "github.com/youwenshao/staffroom/services/email"
	dummydb "github.com/youwenshao/staffroom/storage/database/dummy"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	conf := &core.Config{TestMode: true, AppName: "staffroom", DefaultFromEmail: "noreply@staffroom.test"}
	repo := dummydb.NewUserRepository(dummydb.Open())
	return user.NewService(repo, emailsvc.NewConsoleService(conf), conf), repo
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	nu := user.NewUser{
		Username:        "Kwame",
		Password:        "s3cretpwd!",
		PasswordConfirm: "s3cretpwd!",
		Role:            user.RoleStudentTeacher,
	}

	t.Run("ok", func(t *testing.T) {
		svc, repo := setup(t)
		require.NoError(t, nu.Validate())

		usr, err := svc.Create(ctx, nu)
		require.NoError(t, err)
		assert.NotZero(t, usr.ID)
		assert.Equal(t, user.RoleStudentTeacher, usr.Role)
		assert.NoError(t, usr.CheckPassword("s3cretpwd!"))
		assert.False(t, usr.CreatedAt.IsZero())

		// the password itself is never stored
		stored, err := repo.GetUserByUsername(ctx, "kwame")
		require.NoError(t, err)
		assert.NotContains(t, string(stored.PasswordHash), "s3cretpwd!")

		// the operators are notified; sends are fire-and-forget goroutines
		assert.Eventually(t, func() bool {
			for _, msg := range emailsvc.SentMessages() {
				if strings.Contains(msg.TextContent, "kwame") {
					return true
				}
			}
			return false
		}, time.Second, 10*time.Millisecond, "no signup notification recorded")
	})

	t.Run("duplicate username is a field error", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Create(ctx, nu)
		require.NoError(t, err)

		_, err = svc.Create(ctx, nu)
		require.Error(t, err)
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "err = %T", err)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "username", vErr.Fields[0].Field)
	})
}

func TestService_GetByUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.Create(ctx, user.NewUser{
		Username: "ama", Password: "s3cretpwd!", PasswordConfirm: "s3cretpwd!", Role: user.RoleProfessor,
	})
	require.NoError(t, err)

	// lookups normalize the same way signup does
	usr, err := svc.GetByUsername(ctx, "  AMA ")
	require.NoError(t, err)
	assert.Equal(t, "ama", usr.Username)

	_, err = svc.GetByUsername(ctx, "nobody")
	assert.Equal(t, user.ErrNotFound, err)
}
