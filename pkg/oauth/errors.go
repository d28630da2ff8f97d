// pkg/oauth/errors.go
package oauth

import (
	"errors"
	"fmt"
)

// ErrInvalidState rejects a callback whose nonce was never issued, was
// already consumed, or does not match. Likely CSRF or replay; surfaced as
// a bare 401 with no body detail.
var ErrInvalidState = errors.New("invalid oauth state")

// ErrInvalidShopDomain rejects a shop parameter that is not a platform
// shop domain (guards against redirect/host injection).
var ErrInvalidShopDomain = errors.New("invalid shop domain")

// ExchangeError means the platform token endpoint rejected the code or was
// unreachable. Codes are single-use, so the flow never retries; the shop
// restarts from BeginAuthorization.
type ExchangeError struct {
	Shop string
	Err  error
}

func (e *ExchangeError) Error() string { return fmt.Sprintf("token exchange for %s: %v", e.Shop, e.Err) }
func (e *ExchangeError) Unwrap() error { return e.Err }

// StorageError means the shop store was unavailable.
type StorageError struct {
	Shop string
	Err  error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store token for %s: %v", e.Shop, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// CompletionHookError means the host's AfterAuth hook failed after the
// token was already persisted. The handshake still counts as complete.
type CompletionHookError struct {
	Shop string
	Err  error
}

func (e *CompletionHookError) Error() string {
	return fmt.Sprintf("after-auth hook for %s: %v", e.Shop, e.Err)
}
func (e *CompletionHookError) Unwrap() error { return e.Err }
