// Package cryptox computes content checksums sent alongside uploads so the
// backend can verify that reassembled chunks match the source file.
package cryptox

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// ChecksumAlgorithm is sent with the checksum so the server knows how to
// recompute it.
const ChecksumAlgorithm = "blake2b-256"

// NewHasher returns an unkeyed BLAKE2b-256 hash.
func NewHasher() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return h
}

// Checksum reads r to EOF and returns the hex-encoded BLAKE2b-256 digest.
func Checksum(r io.Reader) (string, error) {
	h := NewHasher()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return Sum(h), nil
}

// Sum hex-encodes the current digest of h.
func Sum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
