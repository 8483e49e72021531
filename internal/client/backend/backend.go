// Package backend is the capability the screens are written against: the
// authentication and table-query surface of the managed backend.
//
// Two implementations exist. GRPCBackend talks to cmd/server and keeps the
// session in the local database. MemoryBackend serves everything in-process
// and backs the -m demo mode and the screen tests.
package backend

import (
	"context"
	"time"
)

// Row is one record as exchanged with the backend. Timestamps are RFC 3339
// strings.
type Row = map[string]any

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated user context. ExpiresAt is when AccessToken
// stops being accepted.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SignUpResult carries the new user. ConfirmationRequired is set when no
// session was started.
type SignUpResult struct {
	User                 User
	ConfirmationRequired bool
}

// Export is a stored snapshot of one list, reachable at URL until ExpiresAt.
type Export struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Backend is the set of operations the screens depend on.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, data map[string]any) (*SignUpResult, error)
	SignOut(ctx context.Context) error
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)

	Query(ctx context.Context, q *Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) ([]Row, error)
	Update(ctx context.Context, table string, values Row, filters ...Filter) (int64, error)
	Delete(ctx context.Context, table string, filters ...Filter) (int64, error)
}

// Exporter is implemented by backends able to snapshot a list to object
// storage.
type Exporter interface {
	ExportList(ctx context.Context, listID string) (*Export, error)
}
