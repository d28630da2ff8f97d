package webhooks

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerify(t *testing.T) {
	body := []byte(`{"id":42,"topic":"orders/create"}`)
	sig := ComputeSignature("secret-s", body)

	assert.True(t, Verify("secret-s", body, sig))
	assert.False(t, Verify("other-secret", body, sig))
	assert.False(t, Verify("secret-s", body, ""))

	// Any body mutation flips the result.
	assert.False(t, Verify("secret-s", append(body, 'x'), sig))
	flipped := bytes.Clone(body)
	flipped[0] ^= 1
	assert.False(t, Verify("secret-s", flipped, sig))
}

func TestVerify_Deterministic(t *testing.T) {
	body := []byte("payload")
	sig := ComputeSignature("s", body)
	for i := 0; i < 3; i++ {
		assert.True(t, Verify("s", body, sig))
	}
}

func TestMiddleware(t *testing.T) {
	var gotBody []byte
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = b
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware("secret-s", zap.NewNop().Sugar())(next)

	body := []byte(`{"hello":"world"}`)

	// Valid signature: passes through with the raw body intact.
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, ComputeSignature("secret-s", body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, gotBody)

	// Bad signature: 401, handler never runs.
	gotBody = nil
	req = httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, "nonsense")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, gotBody)

	// Missing header: same.
	req = httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, gotBody)
}
