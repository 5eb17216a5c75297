package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// InviteCodeAlphabet is the character set for invite codes. Visually
// ambiguous characters (0/O, 1/I) are excluded so codes survive being
// read aloud or copied by hand.
const InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInviteCode returns a random code of the given length drawn from
// InviteCodeAlphabet using crypto/rand.
func GenerateInviteCode(length int) (string, error) {
	max := big.NewInt(int64(len(InviteCodeAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = InviteCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// NormalizeInviteCode uppercases and trims a user-typed code so lookups
// are case-insensitive.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidInviteCode reports whether a normalized code has the expected
// shape: correct length, alphabet characters only.
func IsValidInviteCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(InviteCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
