// Package idhash computes deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeAuctionID computes a deterministic auction id.
// Formula: base58(SHA256(creator|symbol|createdAtUnixNano)[:16])
// The 16-byte truncation keeps ids short enough for URLs while leaving
// collisions out of practical reach.
func ComputeAuctionID(creator, symbol string, createdAtUnixNano int64) string {
	data := fmt.Sprintf("%s|%s|%d", creator, symbol, createdAtUnixNano)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:16])
}
