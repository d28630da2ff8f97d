// pkg/middleware/shop.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"redhio/pkg/config"
	"redhio/pkg/oauth"
)

// ShopHeader names the shop a proxied request acts for when no session
// token is presented.
const ShopHeader = "X-Redhio-Shop-Domain"

type ctxShopKey struct{}

// ShopIdentity resolves the shop domain for an incoming request, in order:
//  1. embedded-app session token: Bearer JWT signed HS256 with the API
//     secret, aud = API key, dest claim carrying https://{shop}
//  2. the X-Redhio-Shop-Domain header
//  3. the shop query parameter
//
// A presented-but-invalid session token is a hard 401; the absence of any
// identity falls through and the session gate rejects downstream.
func ShopIdentity(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shop := ""
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				raw := strings.TrimSpace(authz[len("Bearer "):])
				tok, err := jwt.Parse([]byte(raw),
					jwt.WithKey(jwa.HS256, []byte(cfg.APISecret)),
					jwt.WithValidate(true),
					jwt.WithAudience(cfg.APIKey),
				)
				if err != nil {
					http.Error(w, "", http.StatusUnauthorized)
					return
				}
				dest, ok := tok.Get("dest")
				ds, _ := dest.(string)
				if !ok || ds == "" {
					http.Error(w, "", http.StatusUnauthorized)
					return
				}
				shop = strings.TrimPrefix(ds, "https://")
			}
			if shop == "" {
				shop = r.Header.Get(ShopHeader)
			}
			if shop == "" {
				shop = r.URL.Query().Get("shop")
			}
			if shop != "" && !oauth.ValidShopDomain(shop) {
				http.Error(w, "", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithShop(r.Context(), shop)))
		})
	}
}

// WithShop stores the resolved shop domain in the context.
func WithShop(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, ctxShopKey{}, shop)
}

// ShopFrom returns the shop domain resolved for this request, or "".
func ShopFrom(ctx context.Context) string {
	if v := ctx.Value(ctxShopKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
