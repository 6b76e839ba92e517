package security

import (
	"crypto/rand"
	"math/big"
)

// QR pattern obfuscation: the QR image encodes the session code with half of
// its positions masked by 'X'. A scanner can only reproduce the pattern by
// actually reading the image, which blocks blind token replay.

const (
	SessionCodeLength = 20
	hiddenCount       = 10
	maskChar          = 'X'
)

// GenerateSessionCode returns a mixed-case alphanumeric session code.
func GenerateSessionCode() string {
	return randomFrom(mixedAlnum, SessionCodeLength)
}

// GenerateHiddenIndices picks the random positions to mask.
func GenerateHiddenIndices() []int {
	perm := make([]int, SessionCodeLength)
	for i := range perm {
		perm[i] = i
	}
	// Fisher-Yates with crypto/rand
	for i := len(perm) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			panic(err)
		}
		j := int(n.Int64())
		perm[i], perm[j] = perm[j], perm[i]
	}
	hidden := perm[:hiddenCount]
	sortInts(hidden)
	return hidden
}

// ObfuscatePattern masks the hidden positions of a session code.
func ObfuscatePattern(code string, hiddenIndices []int) string {
	chars := []byte(code)
	for _, idx := range hiddenIndices {
		if idx >= 0 && idx < len(chars) {
			chars[idx] = maskChar
		}
	}
	return string(chars)
}

// ValidateScannedPattern checks a scanned pattern against the stored session
// code: hidden positions must be masked, visible positions must match.
func ValidateScannedPattern(scanned, code string, hiddenIndices []int) bool {
	if scanned == "" || code == "" || len(scanned) != len(code) {
		return false
	}
	hidden := make(map[int]bool, len(hiddenIndices))
	for _, idx := range hiddenIndices {
		hidden[idx] = true
	}
	for i := 0; i < len(code); i++ {
		if hidden[i] {
			if scanned[i] != maskChar {
				return false
			}
		} else if scanned[i] != code[i] {
			return false
		}
	}
	return true
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
