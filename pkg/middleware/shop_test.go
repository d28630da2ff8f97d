package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redhio/pkg/config"
)

func shopCfg() config.Config {
	return config.Config{APIKey: "key123", APISecret: "shh"}
}

func sessionToken(t *testing.T, secret, dest string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Audience([]string{"key123"}).
		Claim("dest", dest).
		IssuedAt(time.Now()).
		Expiration(exp).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(secret)))
	require.NoError(t, err)
	return string(signed)
}

func resolveShop(t *testing.T, mutate func(*http.Request)) (int, string) {
	t.Helper()
	var shop string
	h := ShopIdentity(shopCfg())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop = ShopFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/orders.json", nil)
	mutate(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, shop
}

func TestShopIdentity_SessionToken(t *testing.T) {
	code, shop := resolveShop(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sessionToken(t, "shh", "https://acme.myredhio.com", time.Now().Add(time.Minute)))
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "acme.myredhio.com", shop)
}

func TestShopIdentity_BadSignature(t *testing.T) {
	code, _ := resolveShop(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sessionToken(t, "wrong-key", "https://acme.myredhio.com", time.Now().Add(time.Minute)))
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestShopIdentity_ExpiredToken(t *testing.T) {
	code, _ := resolveShop(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sessionToken(t, "shh", "https://acme.myredhio.com", time.Now().Add(-time.Minute)))
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestShopIdentity_HeaderFallback(t *testing.T) {
	code, shop := resolveShop(t, func(r *http.Request) {
		r.Header.Set(ShopHeader, "acme.myredhio.com")
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "acme.myredhio.com", shop)
}

func TestShopIdentity_QueryFallback(t *testing.T) {
	code, shop := resolveShop(t, func(r *http.Request) {
		q := r.URL.Query()
		q.Set("shop", "acme.myredhio.com")
		r.URL.RawQuery = q.Encode()
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "acme.myredhio.com", shop)
}

func TestShopIdentity_RejectsForeignDomain(t *testing.T) {
	code, _ := resolveShop(t, func(r *http.Request) {
		r.Header.Set(ShopHeader, "evil.example.com")
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestShopIdentity_NoIdentityFallsThrough(t *testing.T) {
	code, shop := resolveShop(t, func(r *http.Request) {})
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, shop)
}
