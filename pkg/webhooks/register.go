// pkg/webhooks/register.go
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"redhio/pkg/session"
)

// Registrar subscribes a freshly installed shop to the configured webhook
// topics. Registration is best-effort: a failed topic is logged and
// skipped, it never fails the handshake.
type Registrar struct {
	topics  []string
	address string // public URL the platform delivers to
	log     *zap.SugaredLogger

	http *http.Client
	base string // test override for https://{shop}
}

func NewRegistrar(topics []string, hostURL string, log *zap.SugaredLogger) *Registrar {
	return &Registrar{
		topics:  topics,
		address: hostURL + "/webhooks",
		log:     log,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookSubscription struct {
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

// RegisterAll creates one subscription per configured topic using the
// shop's stored token.
func (reg *Registrar) RegisterAll(ctx context.Context, s session.Session) {
	for _, topic := range reg.topics {
		if err := reg.register(ctx, s, topic); err != nil {
			reg.log.Warnw("webhook registration failed", "shop", s.Shop, "topic", topic, "err", err)
			continue
		}
		reg.log.Infow("webhook registered", "shop", s.Shop, "topic", topic)
	}
}

func (reg *Registrar) register(ctx context.Context, s session.Session, topic string) error {
	payload := map[string]webhookSubscription{
		"webhook": {
			Topic:   topic,
			Address: reg.address,
			Format:  "json",
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	base := reg.base
	if base == "" {
		base = "https://" + s.Shop
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/admin/webhooks.json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Redhio-Access-Token", s.AccessToken)

	resp, err := reg.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("platform status %d", resp.StatusCode)
	}
	return nil
}
