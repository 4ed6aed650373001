// Package tokenstore persists the session bearer token.
//
// Exactly one value is kept. An empty token from Get means "logged out";
// a present token is not necessarily valid and must be confirmed by a
// successful profile fetch.
package tokenstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/skillswap/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skillswap/internal/common"
)

// Store is the persistent token cell. Writes are last-writer-wins.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// SQLite keeps the token in the metadata table under common.TokenMetadataKey.
type SQLite struct {
	repo metadata.Repository
}

func NewSQLite(repo metadata.Repository) *SQLite {
	return &SQLite{repo: repo}
}

func (s *SQLite) Get(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.TokenMetadataKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *SQLite) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Delete(ctx)
	}
	return s.repo.Set(ctx, common.TokenMetadataKey, []byte(token))
}

func (s *SQLite) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenMetadataKey)
}

// Memory is a process-local Store, used by tests and by runs that must not
// touch the disk.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
