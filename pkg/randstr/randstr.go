// Package randstr generates random strings from a fixed alphabet.
package randstr

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

var ErrEmptyAlphabet = errors.New("randstr: empty alphabet")

// Generate returns length characters drawn uniformly from alphabet using crypto/rand.
func Generate(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", nil
	}
	chars := []rune(alphabet)
	if len(chars) == 0 {
		return "", ErrEmptyAlphabet
	}

	max := big.NewInt(int64(len(chars)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteRune(chars[n.Int64()])
	}
	return b.String(), nil
}

// Only reports whether every character of s belongs to alphabet.
func Only(s, alphabet string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
