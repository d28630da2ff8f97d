// Package proxy forwards gated API calls to the platform's admin REST API
// with the shop's stored token injected. It holds no business logic: the
// only decision it makes is session-present-or-absent.
package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"redhio/pkg/config"
	"redhio/pkg/metrics"
	"redhio/pkg/session"
)

const maxProxyBody = 2 << 20

// Handler is mounted under /api behind middleware.RequireSession, which
// resolves the shop's session into the context. Requests arriving without
// one are rejected before any upstream connection is opened.
type Handler struct {
	log    *zap.SugaredLogger
	client *http.Client

	// base overrides https://{shop} for tests.
	base string
}

func New(cfg config.Config, log *zap.SugaredLogger) *Handler {
	timeout := cfg.ProxyTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{
		log:    log,
		client: &http.Client{Timeout: timeout},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := session.FromContext(ctx)
	if !ok {
		metrics.ProxyRejected.Inc()
		http.Error(w, "", http.StatusUnauthorized)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api")
	base := h.base
	if base == "" {
		base = "https://" + s.Shop
	}
	full := base + "/admin" + rest
	if q := r.URL.RawQuery; q != "" {
		full += "?" + q
	}

	var body io.Reader
	if r.Body != nil {
		body = http.MaxBytesReader(w, r.Body, maxProxyBody)
	}
	// Request context carries through: an abandoned client cancels the
	// upstream call at the network layer.
	upReq, err := http.NewRequestWithContext(ctx, r.Method, full, body)
	if err != nil {
		http.Error(w, "upstream_request_build_failed", http.StatusBadGateway)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		upReq.Header.Set("Content-Type", ct)
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		upReq.Header.Set("Accept", accept)
	}
	upReq.Header.Set("X-Redhio-Access-Token", s.AccessToken)

	resp, err := h.client.Do(upReq)
	if err != nil {
		h.log.Warnw("upstream unreachable", "shop", s.Shop, "path", rest, "err", err)
		http.Error(w, "upstream_unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
