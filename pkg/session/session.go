// Package session derives a per-request view of a shop's stored
// credentials. Sessions are never cached across requests; every resolution
// re-reads the store so an externally revoked token stops working at once.
package session

import (
	"context"
	"errors"

	"redhio/pkg/shops"
)

// ErrUnauthenticated is returned when no install is on record for the shop.
var ErrUnauthenticated = errors.New("no session for shop")

// Session associates an in-flight request with a shop's access token.
type Session struct {
	Shop        string
	AccessToken string
}

// Resolver looks up the shop store. Pure read, safe on every request.
type Resolver struct {
	store shops.Store
}

func NewResolver(store shops.Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, shop string) (Session, error) {
	if shop == "" {
		return Session{}, ErrUnauthenticated
	}
	tok, err := r.store.Get(ctx, shop)
	if errors.Is(err, shops.ErrNotFound) {
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, err
	}
	return Session{Shop: shop, AccessToken: tok}, nil
}

type ctxSessionKey struct{}

// WithSession stores the resolved session in the request context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, s)
}

// FromContext returns the session attached to the request, if any.
func FromContext(ctx context.Context) (Session, bool) {
	if v := ctx.Value(ctxSessionKey{}); v != nil {
		s, ok := v.(Session)
		return s, ok
	}
	return Session{}, false
}
