package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/dbx"
	"github.com/dmitrijs2005/shoplist/internal/server/config"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/items"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/lists"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

// store backs every fake repository with plain maps.
type store struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	lists   map[string]*models.List
	items   map[string]*models.Item
	failOn  map[string]error
	removed []string
}

func newStore() *store {
	return &store{
		users:  map[string]*models.User{},
		tokens: map[string]*models.RefreshToken{},
		lists:  map[string]*models.List{},
		items:  map[string]*models.Item{},
		failOn: map[string]error{},
	}
}

func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *store) fail(op string) error {
	return s.failOn[op]
}

type fakeRepoManager struct{ s *store }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return &fakeUsers{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return &fakeTokens{m.s} }
func (m *fakeRepoManager) Lists(dbx.DBTX) lists.Repository                 { return &fakeLists{m.s} }
func (m *fakeRepoManager) Items(dbx.DBTX) items.Repository                 { return &fakeItems{m.s} }

type fakeUsers struct{ s *store }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("users.create"); err != nil {
		return nil, err
	}
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = f.s.nextID("u")
	u.CreatedAt = time.Now()
	f.s.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("users.get"); err != nil {
		return nil, err
	}
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeTokens struct{ s *store }

func (f *fakeTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("tokens.create"); err != nil {
		return err
	}
	f.s.tokens[token] = &models.RefreshToken{ID: f.s.nextID("rt"), UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if rt, ok := f.s.tokens[token]; ok {
		return rt, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("tokens.consume"); err != nil {
		return nil, err
	}
	rt, ok := f.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.s.tokens, token)
	f.s.removed = append(f.s.removed, token)
	return rt, nil
}

func (f *fakeTokens) Delete(_ context.Context, token string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("tokens.delete"); err != nil {
		return err
	}
	delete(f.s.tokens, token)
	f.s.removed = append(f.s.removed, token)
	return nil
}

func (f *fakeTokens) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for k, rt := range f.s.tokens {
		if rt.UserID == userID {
			delete(f.s.tokens, k)
			n++
		}
	}
	return n, nil
}

func matches(row map[string]any, filters []models.Filter) bool {
	for _, f := range filters {
		if row[f.Column] != f.Value {
			return false
		}
	}
	return true
}

type fakeLists struct{ s *store }

func (f *fakeLists) Select(_ context.Context, ownerID string, filters []models.Filter, _ []models.Order) ([]*models.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("lists.select"); err != nil {
		return nil, err
	}
	out := []*models.List{}
	for _, l := range f.s.lists {
		if l.OwnerID == ownerID && matches(l.Row(), filters) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLists) Get(_ context.Context, ownerID, id string) (*models.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if l, ok := f.s.lists[id]; ok && l.OwnerID == ownerID {
		return l, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeLists) Create(_ context.Context, l *models.List) (*models.List, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("lists.create"); err != nil {
		return nil, err
	}
	l.ID = f.s.nextID("l")
	l.CreatedAt = time.Now()
	f.s.lists[l.ID] = l
	return l, nil
}

func (f *fakeLists) Delete(_ context.Context, ownerID string, filters []models.Filter) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, l := range f.s.lists {
		if l.OwnerID == ownerID && matches(l.Row(), filters) {
			delete(f.s.lists, id)
			n++
		}
	}
	return n, nil
}

type fakeItems struct{ s *store }

func (f *fakeItems) owned(ownerID string, it *models.Item) bool {
	l, ok := f.s.lists[it.ListID]
	return ok && l.OwnerID == ownerID
}

func (f *fakeItems) Select(_ context.Context, ownerID string, filters []models.Filter, _ []models.Order) ([]*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("items.select"); err != nil {
		return nil, err
	}
	out := []*models.Item{}
	for _, it := range f.s.items {
		if f.owned(ownerID, it) && matches(it.Row(), filters) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) Create(_ context.Context, it *models.Item) (*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	it.ID = f.s.nextID("i")
	it.CreatedAt = time.Now()
	f.s.items[it.ID] = it
	return it, nil
}

func (f *fakeItems) Update(_ context.Context, ownerID string, values map[string]any, filters []models.Filter) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, it := range f.s.items {
		if f.owned(ownerID, it) && matches(it.Row(), filters) {
			if c, ok := values["completed"].(bool); ok {
				it.Completed = c
			}
			if name, ok := values["name"].(string); ok {
				it.Name = name
			}
			n++
		}
	}
	return n, nil
}

func (f *fakeItems) Delete(_ context.Context, ownerID string, filters []models.Filter) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, it := range f.s.items {
		if f.owned(ownerID, it) && matches(it.Row(), filters) {
			delete(f.s.items, id)
			n++
		}
	}
	return n, nil
}
