package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ID is the canonical lowercase hex encoding of a SHA-256 content hash.
// It names exactly one immutable object; equal IDs mean equal content.
type ID string

// HexLength is the length of a canonical ID string.
const HexLength = 64

// ErrInvalidID reports a string that is not a canonical object id.
var ErrInvalidID = errors.New("invalid object id")

// Sum computes the ID of raw content.
func Sum(data []byte) ID {
	sum := sha256.Sum256(data)
	return ID(hex.EncodeToString(sum[:]))
}

// Parse validates s as a canonical object id. Uppercase hex is accepted
// and normalized to lowercase.
func Parse(s string) (ID, error) {
	s = strings.ToLower(s)
	if len(s) != HexLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(s), nil
}

// Short returns the 12-character abbreviation used in logs and listings.
func (id ID) Short() string {
	if len(id) < 12 {
		return string(id)
	}
	return string(id[:12])
}
