package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Juan", "Juan"},
		{"  Juan   Pérez ", "Juan Pérez"},
		{"Ana\x00Maria", "AnaMaria"},
		{"Tito\t\nEl Duro", "Tito El Duro"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Name(tt.input)
			if result != tt.expected {
				t.Errorf("Name(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"José", "jose"},
		{"PEÑA", "pena"},
		{"  Ñoño  Álvarez ", "nono alvarez"},
		{"Capicúa", "capicua"},
		{"El Fuerte", "el fuerte"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Fold(tt.input)
			if result != tt.expected {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSameName(t *testing.T) {
	if !SameName("José Peña", "  jose   pena") {
		t.Error("expected folded names to match")
	}
	if SameName("Ana", "Anna") {
		t.Error("expected different names not to match")
	}
}
