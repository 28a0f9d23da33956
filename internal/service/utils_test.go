package service

import "testing"

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid text untouched", "Fatura São João 42€", "Fatura São João 42€"},
		{"NUL runes removed", "abc\x00def", "abcdef"},
		{"invalid bytes removed", "ok\xff\xfefim", "okfim"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeUTF8(tt.input); got != tt.want {
				t.Errorf("sanitizeUTF8(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
