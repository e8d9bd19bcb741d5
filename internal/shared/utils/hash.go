package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// Checksum is an "<algorithm>:<hex digest>" pair as accepted by installs.
type Checksum struct {
	Algorithm HashAlgorithm
	Digest    []byte
}

// ParseChecksum parses "sha256:<hex>". A bare hex string is taken as sha256.
func ParseChecksum(s string) (Checksum, error) {
	algo, digest, found := strings.Cut(s, ":")
	if !found {
		algo, digest = string(SHA256), s
	}

	if HashAlgorithm(strings.ToLower(algo)) != SHA256 {
		return Checksum{}, fmt.Errorf("unsupported checksum algorithm %q", algo)
	}

	raw, err := hex.DecodeString(digest)
	if err != nil || len(raw) != sha256.Size {
		return Checksum{}, fmt.Errorf("checksum digest is not a sha256 hex string")
	}

	return Checksum{Algorithm: SHA256, Digest: raw}, nil
}

// Verify reports whether data hashes to the checksum digest.
func (c Checksum) Verify(data []byte) bool {
	sum := sha256.Sum256(data)
	return subtle.ConstantTimeCompare(sum[:], c.Digest) == 1
}

// HashHex returns the hex sha256 of data.
func HashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
