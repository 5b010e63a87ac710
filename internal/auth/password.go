package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// bcrypt reads at most 72 bytes of input.
const maxBcryptInput = 72

// prehashPrefix marks digests whose bcrypt input was condensed by prehash.
const prehashPrefix = "$sha256$"

// PasswordHasher hashes and verifies passwords with bcrypt. The salt is
// generated per call and embedded in the digest.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher for cost, clamped to bcrypt's bounds.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted digest of plaintext. Passwords longer than bcrypt's
// input limit are condensed first and the digest carries prehashPrefix.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	input, prefix := []byte(plaintext), ""
	if len(plaintext) > maxBcryptInput {
		input, prefix = prehash(plaintext), prehashPrefix
	}
	digest, err := bcrypt.GenerateFromPassword(input, h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return prefix + string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// any other failure, such as a corrupt digest, is returned as an error.
// Whether plaintext is condensed is decided by the digest's mark, never by
// the candidate, so a condensed form is not itself a valid password.
func (h *PasswordHasher) Verify(digest, plaintext string) (bool, error) {
	var input []byte
	if rest, marked := strings.CutPrefix(digest, prehashPrefix); marked {
		if len(plaintext) <= maxBcryptInput {
			if _, err := bcrypt.Cost([]byte(rest)); err != nil {
				return false, fmt.Errorf("verify password: %w", err)
			}
			return false, nil
		}
		digest, input = rest, prehash(plaintext)
	} else {
		if len(plaintext) > maxBcryptInput {
			if _, err := bcrypt.Cost([]byte(digest)); err != nil {
				return false, fmt.Errorf("verify password: %w", err)
			}
			return false, nil
		}
		input = []byte(plaintext)
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), input)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

// prehash condenses a long password to a fixed-size SHA-256 encoding so no
// input bytes are ignored.
func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
