// Package utils provides utility functions for the application.
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NonConfusableAlphabet is the character set for codes participants read and
// type by hand: lowercase without l/o, uppercase without I/O, digits without 0/1.
const NonConfusableAlphabet = "abcdefghijkmnpqrstuvwxyz" + "ABCDEFGHJKLMNPQRSTUVWXYZ" + "23456789"

// GenerateForwardingCode returns a 128-bit hex token used to authorize
// ping click-throughs. Uniqueness is enforced by the database; callers
// regenerate on collision.
func GenerateForwardingCode() (string, error) {
	bytes := make([]byte, ForwardingCodeBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate forwarding code: %w", err)
	}
	return fmt.Sprintf("%x", bytes), nil
}

// GenerateNonConfusableCode returns a short human-readable code of the given
// length drawn from NonConfusableAlphabet.
func GenerateNonConfusableCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	max := big.NewInt(int64(len(NonConfusableAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		out[i] = NonConfusableAlphabet[n.Int64()]
	}
	return string(out), nil
}
