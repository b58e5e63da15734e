package utils

import (
	"crypto/rand"
	"io"
)

// Confirmation codes are read over the phone and written on paper, so the
// alphabet drops the characters people misread: I, L, O, 0 and 1.
const confirmationAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// 256 does not divide evenly by the alphabet size, so bytes at or above this
// limit would skew the draw toward the early characters; they are discarded.
const codeByteLimit = 256 - 256%len(confirmationAlphabet)

// GenerateConfirmationCode returns a fixed-length code drawn uniformly from
// the unambiguous alphabet above.
func GenerateConfirmationCode(length int) string {
	code, err := codeFrom(rand.Reader, length)
	if err != nil {
		return ""
	}
	return code
}

func codeFrom(r io.Reader, length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, 1)
	for len(out) < length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		if int(buf[0]) >= codeByteLimit {
			continue
		}
		out = append(out, confirmationAlphabet[int(buf[0])%len(confirmationAlphabet)])
	}
	return string(out), nil
}
