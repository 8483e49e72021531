package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/shoplist/internal/client/repositories/metadata"
)

const sessionKey = "session"

// SessionStore persists the session between runs.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// MetadataSessionStore keeps the session as JSON under one metadata key.
type MetadataSessionStore struct {
	repo metadata.Repository
}

func NewMetadataSessionStore(repo metadata.Repository) *MetadataSessionStore {
	return &MetadataSessionStore{repo: repo}
}

// Load returns nil when no session was saved.
func (m *MetadataSessionStore) Load(ctx context.Context) (*Session, error) {
	b, err := m.repo.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (m *MetadataSessionStore) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.repo.Set(ctx, sessionKey, b)
}

func (m *MetadataSessionStore) Clear(ctx context.Context) error {
	return m.repo.Delete(ctx, sessionKey)
}
