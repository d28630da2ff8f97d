// Package shops persists the access token a shop obtained during install.
// At most one record exists per shop domain; Put never overwrites an
// existing token (first install wins).
package shops

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no install is on record for the shop.
var ErrNotFound = errors.New("shop not found")

// Store maps a shop domain to its access token. Implementations must make
// Put atomic under concurrent installs for the same shop: the store's own
// conflict primitive is the only synchronization point.
type Store interface {
	// Put records the token for the shop if absent and returns the token
	// now on record, which is the pre-existing one on a duplicate install.
	Put(ctx context.Context, shop, accessToken string) (string, error)
	// Get returns the stored token or ErrNotFound.
	Get(ctx context.Context, shop string) (string, error)
}
