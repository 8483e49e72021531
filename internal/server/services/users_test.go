package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/server/auth"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *store) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	s := newStore()
	return NewUserService(db, &fakeRepoManager{s}, testConfig()), s
}

func TestSignUp(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "  Ana@Example.com ", "secret1", map[string]any{"name": " Ana "})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.NotEmpty(t, u.ID)
	assert.Len(t, u.Salt, 16)
	assert.NotEqual(t, []byte("secret1"), u.PasswordHash)
	assert.Len(t, st.users, 1)

	_, err = svc.SignUp(ctx, "ana@example.com", "another1", nil)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestSignUp_Validation(t *testing.T) {
	svc, st := newUserService(t)

	tests := []struct {
		name     string
		email    string
		password string
		msg      string
	}{
		{"bad email", "not-an-email", "secret1", "Unable to validate email address: invalid format"},
		{"empty email", "", "secret1", "Unable to validate email address: invalid format"},
		{"short password", "a@b.co", "12345", "Password should be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.email, tt.password, nil)
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
	assert.Empty(t, st.users)
}

func TestSignIn(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ana@example.com", "secret1", nil)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		pair, u, err := svc.SignIn(ctx, "ANA@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", u.Email)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.True(t, pair.AccessExpiresAt.After(time.Now()))

		uid, err := auth.GetUserIDFromToken(pair.AccessToken, []byte(testConfig().SecretKey))
		require.NoError(t, err)
		assert.Equal(t, u.ID, uid)
		assert.Contains(t, st.tokens, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, "ana@example.com", "nope12")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, "bob@example.com", "secret1")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("repository failure", func(t *testing.T) {
		st.failOn["users.get"] = errors.New("db down")
		defer delete(st.failOn, "users.get")
		_, _, err := svc.SignIn(ctx, "ana@example.com", "secret1")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})

	t.Run("token store failure", func(t *testing.T) {
		st.failOn["tokens.create"] = errors.New("db down")
		defer delete(st.failOn, "tokens.create")
		_, _, err := svc.SignIn(ctx, "ana@example.com", "secret1")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestRefreshToken_Rotates(t *testing.T) {
	db, mock := newSQLMockDB(t)
	st := newStore()
	svc := NewUserService(db, &fakeRepoManager{st}, testConfig())
	ctx := context.Background()

	st.users["u1"] = &models.User{ID: "u1", Email: "ana@example.com"}
	st.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Hour)}

	mock.ExpectBegin()
	mock.ExpectCommit()

	pair, u, err := svc.RefreshToken(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NotEqual(t, "old", pair.RefreshToken)
	assert.NotContains(t, st.tokens, "old")
	assert.Contains(t, st.tokens, pair.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_RollsBackOnFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	st := newStore()
	svc := NewUserService(db, &fakeRepoManager{st}, testConfig())

	st.users["u1"] = &models.User{ID: "u1"}
	st.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Hour)}
	st.failOn["tokens.consume"] = errors.New("db down")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, _, err := svc.RefreshToken(context.Background(), "old")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Rejects(t *testing.T) {
	db, mock := newSQLMockDB(t)
	st := newStore()
	svc := NewUserService(db, &fakeRepoManager{st}, testConfig())
	st.tokens["stale"] = &models.RefreshToken{UserID: "u1", Token: "stale", Expires: time.Now().Add(-time.Minute)}

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, _, err := svc.RefreshToken(context.Background(), "stale")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.NotContains(t, st.tokens, "stale")

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, err = svc.RefreshToken(context.Background(), "unknown")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_SecondUseRejected(t *testing.T) {
	db, mock := newSQLMockDB(t)
	st := newStore()
	svc := NewUserService(db, &fakeRepoManager{st}, testConfig())
	ctx := context.Background()

	st.users["u1"] = &models.User{ID: "u1"}
	st.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Hour)}

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	first, _, err := svc.RefreshToken(ctx, "old")
	require.NoError(t, err)

	second, _, err := svc.RefreshToken(ctx, "old")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Nil(t, second)

	assert.Len(t, st.tokens, 1)
	assert.Contains(t, st.tokens, first.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignOut(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	st.tokens["a"] = &models.RefreshToken{UserID: "u1", Token: "a"}
	st.tokens["b"] = &models.RefreshToken{UserID: "u1", Token: "b"}
	st.tokens["c"] = &models.RefreshToken{UserID: "u2", Token: "c"}

	assert.ErrorIs(t, svc.SignOut(ctx, "u1", "c"), common.ErrorForbidden)
	assert.Contains(t, st.tokens, "c")

	require.NoError(t, svc.SignOut(ctx, "u1", "a"))
	assert.NotContains(t, st.tokens, "a")
	assert.Contains(t, st.tokens, "b")

	require.NoError(t, svc.SignOut(ctx, "u1", "already-gone"))

	require.NoError(t, svc.SignOut(ctx, "u1", ""))
	assert.NotContains(t, st.tokens, "b")
	assert.Contains(t, st.tokens, "c")
}

func TestGetUser(t *testing.T) {
	svc, st := newUserService(t)
	st.users["u1"] = &models.User{ID: "u1", Email: "ana@example.com"}

	u, err := svc.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = svc.GetUser(context.Background(), "u9")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
