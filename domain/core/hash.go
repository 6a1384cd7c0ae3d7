package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash identifies uploaded workbook bytes
type ContentHash string

// NewContentHash hashes raw workbook bytes
func NewContentHash(data []byte) ContentHash {
	sum := sha256.Sum256(data)
	return ContentHash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h ContentHash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for log lines
func (h ContentHash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}
