package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeUsers struct {
	signUpUser *models.User
	signUpErr  error

	pair    *services.TokenPair
	user    *models.User
	authErr error

	signOutUser  string
	signOutToken string
	signOutErr   error
}

func (f *fakeUsers) SignUp(ctx context.Context, email, password string, data map[string]any) (*models.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	u := *f.signUpUser
	if name, ok := data["name"].(string); ok {
		u.Name = name
	}
	u.Email = email
	return &u, nil
}

func (f *fakeUsers) SignIn(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error) {
	return f.pair, f.user, f.authErr
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, *models.User, error) {
	return f.pair, f.user, f.authErr
}

func (f *fakeUsers) SignOut(ctx context.Context, userID, refreshToken string) error {
	f.signOutUser, f.signOutToken = userID, refreshToken
	return f.signOutErr
}

func (f *fakeUsers) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, common.ErrorNotFound
	}
	return f.user, nil
}

type fakeTables struct {
	lastUser  string
	lastQuery models.Query
	lastTable string
	lastRows  []map[string]any
	lastVals  map[string]any
	lastFilt  []models.Filter

	rows  []map[string]any
	count int64
	err   error
}

func (f *fakeTables) Select(ctx context.Context, userID string, q models.Query) ([]map[string]any, error) {
	f.lastUser, f.lastQuery = userID, q
	return f.rows, f.err
}

func (f *fakeTables) Insert(ctx context.Context, userID string, table string, rows []map[string]any) ([]map[string]any, error) {
	f.lastUser, f.lastTable, f.lastRows = userID, table, rows
	return f.rows, f.err
}

func (f *fakeTables) Update(ctx context.Context, userID string, table string, values map[string]any, filters []models.Filter) (int64, error) {
	f.lastUser, f.lastTable, f.lastVals, f.lastFilt = userID, table, values, filters
	return f.count, f.err
}

func (f *fakeTables) Delete(ctx context.Context, userID string, table string, filters []models.Filter) (int64, error) {
	f.lastUser, f.lastTable, f.lastFilt = userID, table, filters
	return f.count, f.err
}

type fakeExports struct {
	res *services.ExportResult
	err error
}

func (f *fakeExports) ExportList(ctx context.Context, userID, listID string) (*services.ExportResult, error) {
	return f.res, f.err
}

func newTestServer(secret string) (*GRPCServer, *fakeUsers, *fakeTables, *fakeExports) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	us := &fakeUsers{
		signUpUser: &models.User{ID: "u1", CreatedAt: now},
		user:       &models.User{ID: "u1", Email: "ana@example.com", Name: "Ana", CreatedAt: now},
		pair:       &services.TokenPair{AccessToken: "at", RefreshToken: "rt", AccessExpiresAt: now.Add(time.Hour)},
	}
	ts := &fakeTables{}
	es := &fakeExports{}
	return NewGRPCServer("127.0.0.1:0", nopLogger{}, us, ts, es, secret), us, ts, es
}
