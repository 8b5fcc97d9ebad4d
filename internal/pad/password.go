package pad

import (
	"crypto/rand"
	"fmt"
)

const passwordLetters = "abcdefghijklmnopqrstuvwxyz"

// newPassword generates a 4-lowercase-letter slot password.
func newPassword() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the platform entropy source is
		// broken; nothing sensible to fall back to.
		panic(fmt.Sprintf("pad: reading random bytes: %v", err))
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = passwordLetters[int(b)%len(passwordLetters)]
	}
	return string(out)
}

// ValidPassword reports whether p is exactly four lowercase letters.
func ValidPassword(p string) bool {
	if len(p) != 4 {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 'a' || p[i] > 'z' {
			return false
		}
	}
	return true
}
