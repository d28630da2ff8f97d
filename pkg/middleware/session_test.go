package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"redhio/pkg/session"
	"redhio/pkg/shops"
)

// downStore simulates a storage backend outage.
type downStore struct{ err error }

func (d *downStore) Put(ctx context.Context, shop, tok string) (string, error) { return "", d.err }
func (d *downStore) Get(ctx context.Context, shop string) (string, error)      { return "", d.err }

func gateRequest(t *testing.T, store shops.Store, shop string) (*httptest.ResponseRecorder, session.Session, bool) {
	t.Helper()
	var got session.Session
	var attached bool
	h := RequireSession(session.NewResolver(store), zap.NewNop().Sugar())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, attached = session.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	req := httptest.NewRequest(http.MethodGet, "/api/orders.json", nil)
	if shop != "" {
		req = req.WithContext(WithShop(req.Context(), shop))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got, attached
}

func TestRequireSession_AttachesSession(t *testing.T) {
	store := shops.NewMemoryStore(zap.NewNop().Sugar())
	_, err := store.Put(context.Background(), "acme.myredhio.com", "tok-1")
	require.NoError(t, err)

	rec, got, attached := gateRequest(t, store, "acme.myredhio.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, attached)
	assert.Equal(t, session.Session{Shop: "acme.myredhio.com", AccessToken: "tok-1"}, got)
}

func TestRequireSession_NoInstall(t *testing.T) {
	store := shops.NewMemoryStore(zap.NewNop().Sugar())
	rec, _, attached := gateRequest(t, store, "ghost.myredhio.com")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, attached)
}

func TestRequireSession_NoIdentity(t *testing.T) {
	store := shops.NewMemoryStore(zap.NewNop().Sugar())
	rec, _, attached := gateRequest(t, store, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, attached)
}

func TestRequireSession_StoreOutage(t *testing.T) {
	// A backend outage is a service failure, not a missing install.
	rec, _, attached := gateRequest(t, &downStore{err: errors.New("pg down")}, "acme.myredhio.com")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.False(t, attached)
}
