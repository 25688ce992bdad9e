// Package cryptox contains the hashing primitives behind credentials:
// opaque refresh secrets and their digests, and bcrypt password hashes.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// RefreshTokenBytes is the entropy of a refresh secret: 256 bits.
const RefreshTokenBytes = 32

// NewOpaqueToken returns a fresh refresh secret as unpadded base64url.
func NewOpaqueToken() (string, error) {
	return common.MakeRandURLString(RefreshTokenBytes)
}

// HashToken returns the hex SHA-256 digest of token. Only this value is
// ever persisted; the plaintext stays with the client.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// bcryptCost is a var so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) (string, error) {
	h, err := bcrypt.GenerateFromPassword(password, bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// reported as a mismatch.
func CheckPassword(hash string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), password) == nil
}
