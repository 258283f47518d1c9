package security

import (
	"strings"
	"testing"
)

func TestGenerateShareCode(t *testing.T) {
	codes := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := GenerateShareCode()
		if err != nil {
			t.Fatalf("GenerateShareCode() error: %v", err)
		}

		if len(code) != ShareCodeLength {
			t.Errorf("code length %d, want %d", len(code), ShareCodeLength)
		}

		for _, c := range code {
			if !strings.ContainsRune(shareCodeChars, c) {
				t.Errorf("code %q contains character outside alphabet", code)
			}
		}

		if codes[code] {
			t.Errorf("duplicate share code generated: %s", code)
		}
		codes[code] = true
	}
}

func TestShareCodeAvoidsAmbiguousCharacters(t *testing.T) {
	for _, c := range "l01oO" {
		if strings.ContainsRune(shareCodeChars, c) {
			t.Errorf("alphabet must not contain ambiguous character %q", c)
		}
	}
}
