package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateConfirmationCodeLength(t *testing.T) {
	code := GenerateConfirmationCode(8)
	if len(code) != 8 {
		t.Fatalf("len = %d, want 8", len(code))
	}
}

func TestGenerateConfirmationCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateConfirmationCode(8)
		for _, c := range code {
			if !strings.ContainsRune(confirmationAlphabet, c) {
				t.Fatalf("code %q contains %q, outside the allowed alphabet", code, c)
			}
		}
		if strings.ContainsAny(code, "ILO01") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}

func TestGenerateConfirmationCodeVaries(t *testing.T) {
	a := GenerateConfirmationCode(8)
	b := GenerateConfirmationCode(8)
	if a == b {
		t.Errorf("two codes identical: %q", a)
	}
}

func TestCodeFromDiscardsBiasedBytes(t *testing.T) {
	// 255 and 248 sit above the rejection limit and must be skipped rather
	// than wrapped back onto the early characters; 0, 1 and 61 map to the
	// first, second and last alphabet entries.
	src := bytes.NewReader([]byte{255, 0, 248, 1, 61})

	code, err := codeFrom(src, 3)
	if err != nil {
		t.Fatalf("codeFrom failed: %v", err)
	}
	if code != "AB9" {
		t.Errorf("code = %q, want AB9", code)
	}
}

func TestCodeFromExhaustedSource(t *testing.T) {
	// Only a rejected byte available: the draw must fail, not loop or
	// return a short code.
	if _, err := codeFrom(bytes.NewReader([]byte{255}), 1); err == nil {
		t.Error("codeFrom succeeded on an exhausted source, want error")
	}
}
