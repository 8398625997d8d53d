package utils

import (
	"testing"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Maçã", "Maca"},
		{"Orgânico", "Organico"},
		{"açaí", "acai"},
		{"pão de queijo", "pao de queijo"},
		{"Limão Taiti", "Limao Taiti"},
		{"café", "cafe"},
		{"sem acento", "sem acento"},
		{"", ""},
	}

	for _, test := range tests {
		result := StripAccents(test.input)
		if result != test.expected {
			t.Errorf("StripAccents(%q) = %q; expected %q", test.input, result, test.expected)
		}
	}
}
