package service

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and strips separators", "PT50 0002-0123", "pt5000020123"},
		{"strips diacritics", "Eletricidade São João", "eletricidadesaojoao"},
		{"removes punctuation", "E.D.P., Comercial!", "edpcomercial"},
		{"empty input", "", ""},
		{"only punctuation", "-- / --", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentifier(tt.input); got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "EDP   Comercial\t S.A.", "edp comercial s.a."},
		{"strips diacritics keeps punctuation", "Águas de Évora, Lda.", "aguas de evora, lda."},
		{"trims edges", "  luz  ", "luz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeKeyText(tt.input); got != tt.want {
				t.Errorf("normalizeKeyText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
