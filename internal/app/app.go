// Package app wires the add-on's handlers into a router a host
// application can mount: the OAuth endpoints, the verified webhook prefix,
// and the session-gated API proxy.
package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"redhio/internal/proxy"
	"redhio/pkg/config"
	"redhio/pkg/metrics"
	"redhio/pkg/middleware"
	"redhio/pkg/nonce"
	"redhio/pkg/oauth"
	"redhio/pkg/problems"
	"redhio/pkg/session"
	"redhio/pkg/shops"
	"redhio/pkg/webhooks"
)

// Options carries the host-supplied collaborators. Zero-value fields get
// in-memory defaults so a bare New(cfg, log, Options{}) works in dev.
type Options struct {
	Store          shops.Store
	Nonces         nonce.Tracker
	AfterAuth      oauth.AfterAuthFunc
	WebhookHandler http.Handler // host webhook logic, runs only after verification
}

// App is the add-on container. Construct once, mount Handler().
type App struct {
	cfg config.Config
	log *zap.SugaredLogger

	flow           *oauth.Flow
	resolver       *session.Resolver
	registrar      *webhooks.Registrar
	webhookHandler http.Handler
	apiProxy       *proxy.Handler
}

func New(cfg config.Config, log *zap.SugaredLogger, opts Options) *App {
	store := opts.Store
	if store == nil {
		store = shops.NewMemoryStore(log)
	}
	tracker := opts.Nonces
	if tracker == nil {
		tracker = nonce.NewMemoryTracker(cfg.NonceTTL)
	}
	wh := opts.WebhookHandler
	if wh == nil {
		wh = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}

	resolver := session.NewResolver(store)
	a := &App{
		cfg:            cfg,
		log:            log,
		flow:           oauth.NewFlow(cfg, store, tracker, opts.AfterAuth, log),
		resolver:       resolver,
		registrar:      webhooks.NewRegistrar(cfg.WebhookTopics, cfg.HostURL, log),
		webhookHandler: wh,
		apiProxy:       proxy.New(cfg, log),
	}
	if err := metrics.Register(nil); err != nil {
		log.Warnw("metrics register", "err", err)
	}
	return a
}

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))

	r.Get("/auth", a.handleAuth)
	r.Get("/auth/callback", a.handleCallback)

	r.Route("/webhooks", func(wr chi.Router) {
		// Signature check sits ahead of anything that could read the body.
		wr.Use(webhooks.Middleware(a.cfg.APISecret, a.log))
		wr.Handle("/*", a.webhookHandler)
		wr.Handle("/", a.webhookHandler)
	})

	r.With(
		middleware.ShopIdentity(a.cfg),
		middleware.RequireSession(a.resolver, a.log),
	).Handle("/api/*", a.apiProxy)

	return r
}

func (a *App) handleAuth(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	redirect, err := a.flow.BeginAuthorization(r.Context(), shop)
	if errors.Is(err, oauth.ErrInvalidShopDomain) {
		http.Error(w, "invalid shop parameter", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.log.Errorw("begin authorization", "shop", shop, "err", err)
		problems.Write(w, http.StatusInternalServerError, "auth-start-failed", "could not start authorization")
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (a *App) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	s, err := a.flow.HandleCallback(ctx, q)

	var hookErr *oauth.CompletionHookError
	if errors.As(err, &hookErr) {
		// Token already persisted; report and treat the install as done.
		a.log.Errorw("after-auth hook failed", "shop", hookErr.Shop, "err", hookErr.Err)
		err = nil
	}

	if err != nil {
		var exchErr *oauth.ExchangeError
		var storeErr *oauth.StorageError
		switch {
		case errors.Is(err, oauth.ErrInvalidState), errors.Is(err, oauth.ErrInvalidShopDomain):
			// Bodyless on purpose, same response for every rejected callback.
			http.Error(w, "", http.StatusUnauthorized)
		case errors.As(err, &exchErr):
			a.log.Errorw("token exchange failed", "shop", exchErr.Shop, "err", exchErr.Err)
			problems.Write(w, http.StatusBadGateway, "exchange-failed", "token exchange with the platform failed")
		case errors.As(err, &storeErr):
			a.log.Errorw("token store unavailable", "shop", storeErr.Shop, "err", storeErr.Err)
			problems.Write(w, http.StatusServiceUnavailable, "storage-unavailable", "token store unavailable")
		default:
			a.log.Errorw("callback failed", "err", err)
			problems.Write(w, http.StatusInternalServerError, "callback-failed", "callback handling failed")
		}
		return
	}

	a.registrar.RegisterAll(ctx, s)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "shop": s.Shop})
}
