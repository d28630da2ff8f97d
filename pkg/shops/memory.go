// pkg/shops/memory.go
package shops

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// memStore keeps tokens in a mutex-guarded map. Contents are lost on
// restart; fine for development, documented for embedders.
type memStore struct {
	log *zap.SugaredLogger

	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryStore(log *zap.SugaredLogger) Store {
	return &memStore{log: log, tokens: map[string]string{}}
}

func (m *memStore) Put(ctx context.Context, shop, accessToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.tokens[shop]; ok {
		m.log.Debugw("duplicate install ignored", "shop", shop)
		return existing, nil
	}
	m.tokens[shop] = accessToken
	return accessToken, nil
}

func (m *memStore) Get(ctx context.Context, shop string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tok, ok := m.tokens[shop]; ok {
		return tok, nil
	}
	return "", ErrNotFound
}
