// Package oauth drives the authorization-code handshake with the platform:
// redirect issuance, callback validation, code-for-token exchange, and
// persistence of the resulting shop credential.
package oauth

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"redhio/pkg/config"
	"redhio/pkg/metrics"
	"redhio/pkg/nonce"
	"redhio/pkg/session"
	"redhio/pkg/shops"
)

// AfterAuthFunc is the host's completion hook, invoked synchronously once
// per successful handshake.
type AfterAuthFunc func(ctx context.Context, s session.Session) error

// Flow orchestrates one handshake per shop. All cross-request state lives
// in the nonce tracker and the shop store; Flow itself is stateless and
// safe for concurrent use.
type Flow struct {
	client    *Client
	store     shops.Store
	nonces    nonce.Tracker
	apiSecret string
	afterAuth AfterAuthFunc
	log       *zap.SugaredLogger
}

func NewFlow(cfg config.Config, store shops.Store, nonces nonce.Tracker, afterAuth AfterAuthFunc, log *zap.SugaredLogger) *Flow {
	return &Flow{
		client:    NewClient(cfg),
		store:     store,
		nonces:    nonces,
		apiSecret: cfg.APISecret,
		afterAuth: afterAuth,
		log:       log,
	}
}

// BeginAuthorization issues a fresh nonce for the shop and returns the
// platform authorization URL to redirect to. No network call.
func (f *Flow) BeginAuthorization(ctx context.Context, shop string) (string, error) {
	if !ValidShopDomain(shop) {
		return "", ErrInvalidShopDomain
	}
	n, err := f.nonces.Issue(ctx, shop)
	if err != nil {
		return "", err
	}
	metrics.HandshakesStarted.Inc()
	f.log.Infow("authorization started", "shop", shop)
	return f.client.AuthorizeURL(shop, n), nil
}

// HandleCallback validates the platform callback and completes the
// handshake. Query params: shop, state, code, hmac.
//
// The nonce is consumed before any network call so replayed or forged
// callbacks are rejected cheaply. Persistence is the commit point: a token
// stored before the caller went away stays valid.
func (f *Flow) HandleCallback(ctx context.Context, q url.Values) (session.Session, error) {
	shop := q.Get("shop")
	if !ValidShopDomain(shop) {
		metrics.HandshakeFailures.WithLabelValues("invalid_shop").Inc()
		return session.Session{}, ErrInvalidShopDomain
	}
	if !VerifyCallbackHMAC(q, f.apiSecret) {
		metrics.HandshakeFailures.WithLabelValues("invalid_state").Inc()
		return session.Session{}, ErrInvalidState
	}
	if err := f.nonces.Consume(ctx, shop, q.Get("state")); err != nil {
		metrics.HandshakeFailures.WithLabelValues("invalid_state").Inc()
		return session.Session{}, ErrInvalidState
	}

	token, err := f.client.ExchangeCode(ctx, shop, q.Get("code"))
	if err != nil {
		metrics.HandshakeFailures.WithLabelValues("exchange").Inc()
		return session.Session{}, &ExchangeError{Shop: shop, Err: err}
	}

	// Insert-if-absent: a concurrent install may have won; its token stays
	// on record and this handshake proceeds with it.
	stored, err := f.store.Put(ctx, shop, token)
	if err != nil {
		metrics.HandshakeFailures.WithLabelValues("storage").Inc()
		return session.Session{}, &StorageError{Shop: shop, Err: err}
	}
	metrics.HandshakesCompleted.Inc()
	f.log.Infow("handshake complete", "shop", shop)

	s := session.Session{Shop: shop, AccessToken: stored}
	if f.afterAuth != nil {
		if err := f.afterAuth(ctx, s); err != nil {
			// Token already persisted; the handshake stands.
			return s, &CompletionHookError{Shop: shop, Err: err}
		}
	}
	return s, nil
}
