package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"math/big"
)

const (
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	mixedAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	digits     = "0123456789"

	// AuthKeyLength is the length of a minted membership auth key.
	AuthKeyLength = 64
)

func randomFrom(charset string, length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform entropy source is
			// broken; nothing sensible to return.
			panic(err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out)
}

// GenerateInvitationCode returns a lowercase alphanumeric invitation code.
func GenerateInvitationCode(length int) string {
	return randomFrom(lowerAlnum, length)
}

// GeneratePin returns a numeric PIN of the given length.
func GeneratePin(length int) string {
	return randomFrom(digits, length)
}

// GenerateURLToken returns a 64-character URL-safe token.
func GenerateURLToken() string {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// GenerateAuthKey returns a mixed-case alphanumeric membership auth key.
func GenerateAuthKey() string {
	return randomFrom(mixedAlnum, AuthKeyLength)
}

// Fingerprint returns the hex SHA-256 digest of a secret, used for unique
// indexing and lookup without storing the secret itself.
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two secrets without leaking timing.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
