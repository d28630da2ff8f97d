// pkg/oauth/client.go
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"redhio/pkg/config"
)

const (
	authorizePath = "/admin/oauth/authorize"
	tokenPath     = "/admin/oauth/access_token"
)

var shopDomainRE = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myredhio\.com$`)

// ValidShopDomain reports whether shop is a plain platform shop domain.
// Anything else (schemes, paths, foreign hosts) must be rejected before it
// can steer a redirect or an upstream call.
func ValidShopDomain(shop string) bool {
	return shopDomainRE.MatchString(shop)
}

// Client talks to the platform's OAuth endpoints. Both endpoints live on
// the shop's own domain.
type Client struct {
	apiKey      string
	apiSecret   string
	redirectURL string
	scopes      []string
	accessMode  string

	// base overrides the https://{shop} endpoint base; tests point it at a
	// local server.
	base string

	http *http.Client
}

func NewClient(cfg config.Config) *Client {
	timeout := cfg.ExchangeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		redirectURL: cfg.HostURL + "/auth/callback",
		scopes:      cfg.Scopes,
		accessMode:  cfg.AccessMode,
		http:        &http.Client{Timeout: timeout},
	}
}

// AuthorizeURL builds the install redirect for a shop. No network call.
func (c *Client) AuthorizeURL(shop, state string) string {
	q := url.Values{}
	q.Set("client_id", c.apiKey)
	q.Set("scope", strings.Join(c.scopes, ","))
	q.Set("redirect_uri", c.redirectURL)
	q.Set("state", state)
	if c.accessMode == config.AccessModeOnline {
		q.Set("grant_options[]", "per-user")
	}
	return "https://" + shop + authorizePath + "?" + q.Encode()
}

// tokenResponse is the platform token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// ExchangeCode trades an authorization code for an access token. The code
// is single-use; callers must not retry on failure.
func (c *Client) ExchangeCode(ctx context.Context, shop, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.apiKey)
	form.Set("client_secret", c.apiSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointBase(shop)+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != "" {
		return "", fmt.Errorf("platform oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("no access_token in response")
	}
	return tr.AccessToken, nil
}

func (c *Client) endpointBase(shop string) string {
	if c.base != "" {
		return c.base
	}
	return "https://" + shop
}
