package security

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for group share codes. Lowercase letters and digits with
// ambiguous characters (l, 0, o, 1) removed so codes survive being read
// aloud or copied by hand.
const shareCodeChars = "abcdefghijkmnpqrstuvwxyz23456789"

// ShareCodeLength is the length of a group's shareable ID token
const ShareCodeLength = 8

// GenerateShareCode generates a short shareable group identifier
func GenerateShareCode() (string, error) {
	code := make([]byte, ShareCodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(shareCodeChars))))
		if err != nil {
			return "", err
		}
		code[i] = shareCodeChars[num.Int64()]
	}
	return string(code), nil
}
