package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// RowHash identifies the full content of one output row.
type RowHash Hash

// NewRowHash hashes the rendered cells of a row. Cells are separated by a unit
// separator so that ("ab","c") and ("a","bc") never collide.
func NewRowHash(cells []string) RowHash {
	return RowHash(NewHash([]byte(strings.Join(cells, "\x1f"))))
}

// ConfigHash fingerprints the parameters of a build.
type ConfigHash Hash

func (h ConfigHash) String() string { return Hash(h).String() }
