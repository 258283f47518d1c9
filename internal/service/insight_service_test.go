package service

import "testing"

func TestParseMantraSuggestions(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr bool
		expectLen int
	}{
		{
			name:      "plain json array",
			input:     `[{"text":"Om Gam Ganapataye Namaha","meaning":"Remover of obstacles","targetCount":108}]`,
			expectLen: 1,
		},
		{
			name: "markdown fenced json",
			input: "```json\n" +
				`[{"text":"Om Shanti","targetCount":21},{"text":"So Hum","targetCount":54}]` +
				"\n```",
			expectLen: 2,
		},
		{
			name:      "entries without text dropped",
			input:     `[{"text":"","targetCount":108},{"text":"Om Shanti"}]`,
			expectLen: 1,
		},
		{
			name:      "free text response",
			input:     "Here are three mantras you might enjoy...",
			expectErr: true,
		},
		{
			name:      "empty response",
			input:     "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions, err := parseMantraSuggestions(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMantraSuggestions failed: %v", err)
			}
			if len(suggestions) != tt.expectLen {
				t.Fatalf("expected %d suggestions, got %d", tt.expectLen, len(suggestions))
			}
			for _, s := range suggestions {
				if s.TargetCount <= 0 {
					t.Errorf("suggestion %q missing default target count", s.Text)
				}
			}
		})
	}
}
