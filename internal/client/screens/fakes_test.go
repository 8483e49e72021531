package screens

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shoplist/internal/client/backend"
	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/stretchr/testify/require"
)

type navCall struct {
	Op     string
	Route  Route
	Params Params
}

type recordingNav struct {
	mu    sync.Mutex
	calls []navCall
}

func (n *recordingNav) Replace(r Route, p Params) { n.add(navCall{"replace", r, p}) }
func (n *recordingNav) Push(r Route, p Params)    { n.add(navCall{"push", r, p}) }
func (n *recordingNav) Back()                     { n.add(navCall{Op: "back"}) }

func (n *recordingNav) add(c navCall) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
}

func (n *recordingNav) last() navCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return navCall{}
	}
	return n.calls[len(n.calls)-1]
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

// countingBackend counts every call reaching the wrapped backend.
type countingBackend struct {
	backend.Backend
	mu    sync.Mutex
	calls int
}

func (c *countingBackend) hit() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingBackend) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *countingBackend) SignIn(ctx context.Context, e, p string) (*backend.Session, error) {
	c.hit()
	return c.Backend.SignIn(ctx, e, p)
}

func (c *countingBackend) SignUp(ctx context.Context, e, p string, d map[string]any) (*backend.SignUpResult, error) {
	c.hit()
	return c.Backend.SignUp(ctx, e, p, d)
}

func (c *countingBackend) Insert(ctx context.Context, t string, rows ...backend.Row) ([]backend.Row, error) {
	c.hit()
	return c.Backend.Insert(ctx, t, rows...)
}

type env struct {
	mem    *backend.MemoryBackend
	be     *countingBackend
	nav    *recordingNav
	notify *recordingNotifier
	deps   Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := backend.NewMemoryBackend()
	e := &env{
		mem:    mem,
		be:     &countingBackend{Backend: mem},
		nav:    &recordingNav{},
		notify: &recordingNotifier{},
	}
	e.deps = Deps{
		Backend: e.be,
		Nav:     e.nav,
		Notify:  e.notify,
		Logger:  logging.NewText(io.Discard, slog.LevelError),
	}
	return e
}

// signIn registers and signs in a user, returning its id.
func (e *env) signIn(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.mem.SignUp(ctx, email, "secret1", map[string]any{"name": "Ana"})
	require.NoError(t, err)
	s, err := e.mem.SignIn(ctx, email, "secret1")
	require.NoError(t, err)
	return s.User.ID
}

// exporting adds export support to a backend.
type exporting struct {
	backend.Backend
	listID string
}

func (x *exporting) ExportList(_ context.Context, id string) (*backend.Export, error) {
	x.listID = id
	return &backend.Export{Key: "exports/k.json", URL: "https://s3/k"}, nil
}
