package sanitizer

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "Sprint planning", "Sprint planning"},
		{"surrounding space trimmed", "  Sprint planning  ", "Sprint planning"},
		{"internal runs collapsed", "Sprint \t planning", "Sprint planning"},
		{"newlines collapsed", "Sprint\nplanning\nreview", "Sprint planning review"},
		{"control characters stripped", "Sprint\x00plan\x08ning", "Sprintplanning"},
		{"empty stays empty", "", ""},
		{"whitespace only becomes empty", " \t\n ", ""},
		{"unicode preserved", "Reunião de planejamento", "Reunião de planejamento"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercased", "John.Doe@Example.COM", "john.doe@example.com"},
		{"whitespace stripped", " john @example.com ", "john@example.com"},
		{"control characters stripped", "john\x00@example.com", "john@example.com"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeEmail(tt.input); got != tt.want {
				t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
