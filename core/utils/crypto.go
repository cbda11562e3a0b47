package utils

import "crypto/subtle"

// TokenEquals compares two secrets in constant time.
func TokenEquals(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
