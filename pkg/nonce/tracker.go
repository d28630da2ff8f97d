// Package nonce binds an authorization redirect to its callback. One nonce
// is outstanding per shop; issuing again replaces it. Consume removes the
// nonce whether or not the presented value matches, so replayed callbacks
// always fail.
package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrMismatch is returned by Consume when the nonce is absent, expired, or
// the presented value differs from the issued one.
var ErrMismatch = errors.New("nonce missing or mismatched")

// Tracker issues and atomically consumes per-shop nonces. Concurrent
// Consume calls racing on the same nonce yield exactly one success.
type Tracker interface {
	Issue(ctx context.Context, shop string) (string, error)
	Consume(ctx context.Context, shop, presented string) error
}

// generate returns an unguessable random token.
func generate() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
