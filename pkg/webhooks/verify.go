// Package webhooks authenticates platform-initiated notifications and
// registers webhook subscriptions after an install.
package webhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"go.uber.org/zap"

	"redhio/pkg/metrics"
)

// SignatureHeader carries the platform's base64 HMAC-SHA256 of the raw
// request body.
const SignatureHeader = "X-Redhio-Hmac-Sha256"

const maxBodyBytes = 2 << 20

// ComputeSignature returns the expected header value for a body.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks a claimed signature against the exact raw body bytes in
// constant time. Pure function of (secret, body, claimed).
func Verify(secret string, body []byte, claimed string) bool {
	if claimed == "" {
		return false
	}
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(claimed))
}

// Middleware captures the raw body before anything can parse it, verifies
// the signature, and only then hands the request on with the body
// restored. Re-serialization after parsing is not byte-stable, so this
// middleware must sit ahead of any body-reading handler.
func Middleware(secret string, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				http.Error(w, "", http.StatusBadRequest)
				return
			}
			if !Verify(secret, body, r.Header.Get(SignatureHeader)) {
				metrics.WebhookVerifications.WithLabelValues("rejected").Inc()
				log.Warnw("webhook signature mismatch", "path", r.URL.Path)
				http.Error(w, "", http.StatusUnauthorized)
				return
			}
			metrics.WebhookVerifications.WithLabelValues("accepted").Inc()
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
