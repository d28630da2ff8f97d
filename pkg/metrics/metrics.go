// Package metrics defines the add-on's Prometheus collectors in one place
// so the flow, webhook, and proxy packages share them without cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HandshakesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redhio_handshakes_started_total",
		Help: "Authorization redirects issued",
	})

	HandshakesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redhio_handshakes_completed_total",
		Help: "Handshakes that persisted a token",
	})

	HandshakeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redhio_handshake_failures_total",
		Help: "Handshakes failed, by reason",
	}, []string{"reason"})

	WebhookVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redhio_webhook_verifications_total",
		Help: "Webhook signature checks, by result",
	}, []string{"result"})

	ProxyRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redhio_proxy_rejected_total",
		Help: "Gated API calls rejected without a session",
	})
)

// Register registers all collectors on the given registry (or the default
// if nil). Re-registration is tolerated so embedders can call it freely.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HandshakesStarted, HandshakesCompleted, HandshakeFailures,
		WebhookVerifications, ProxyRejected,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
