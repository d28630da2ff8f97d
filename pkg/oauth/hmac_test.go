package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// signQuery computes the platform's callback signature the way the
// platform does, for building valid test callbacks.
func signQuery(q url.Values, secret string) {
	var keys []string
	for k := range q {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		for _, v := range q[k] {
			parts = append(parts, k+"="+strings.ReplaceAll(v, "&", "%26"))
		}
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strings.Join(parts, "&")))
	q.Set("hmac", hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyCallbackHMAC(t *testing.T) {
	q := url.Values{}
	q.Set("shop", "acme.myredhio.com")
	q.Set("state", "abc123")
	q.Set("code", "code456")
	signQuery(q, "shh")

	require.True(t, VerifyCallbackHMAC(q, "shh"))
	require.False(t, VerifyCallbackHMAC(q, "wrong-secret"))

	q.Set("code", "tampered")
	require.False(t, VerifyCallbackHMAC(q, "shh"))
}

func TestVerifyCallbackHMAC_Missing(t *testing.T) {
	q := url.Values{}
	q.Set("shop", "acme.myredhio.com")
	require.False(t, VerifyCallbackHMAC(q, "shh"))
	require.False(t, VerifyCallbackHMAC(q, ""))
}
