package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInvitationCode(t *testing.T) {
	code := GenerateInvitationCode(15)
	assert.Len(t, code, 15)
	for _, c := range code {
		assert.True(t, (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'), "unexpected character %q", c)
	}
}

func TestGeneratePin(t *testing.T) {
	pin := GeneratePin(6)
	assert.Len(t, pin, 6)
	for _, c := range pin {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestGenerateURLToken(t *testing.T) {
	token := GenerateURLToken()
	assert.Len(t, token, 64)
	assert.NotEqual(t, token, GenerateURLToken())
}

func TestGenerateAuthKey_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		key := GenerateAuthKey()
		assert.Len(t, key, AuthKeyLength)
		assert.False(t, seen[key], "duplicate auth key after %d generations", i)
		seen[key] = true
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("some-secret")
	b := Fingerprint("some-secret")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // sha256 hex
	assert.NotEqual(t, a, Fingerprint("other-secret"))
}

func TestConstantTimeEquals(t *testing.T) {
	assert.True(t, ConstantTimeEquals("123456", "123456"))
	assert.False(t, ConstantTimeEquals("123456", "123457"))
	assert.False(t, ConstantTimeEquals("123456", "12345"))
	assert.False(t, ConstantTimeEquals("", "123456"))
}
