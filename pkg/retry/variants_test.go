package retry

import (
	"slices"
	"testing"
)

func TestStripDiacritics(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Málaga", "Malaga"},
		{"Peñaflor", "Penaflor"},
		{"ALMERÍA", "ALMERIA"},
		{"tomate", "tomate"},
	}
	for _, tt := range tests {
		if got := StripDiacritics(tt.in); got != tt.want {
			t.Errorf("StripDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVariants(t *testing.T) {
	p := DefaultPolicy()
	got := p.Variants("Semillero García 2")

	for _, want := range []string{
		"Semillero García 2",
		"SEMILLERO GARCÍA 2",
		"semillero garcía 2",
		"Semillero Garcia 2",
		"Semillero",
		"SemilleroGarcía2",
		"Semillero García",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("Variants missing %q, got %v", want, got)
		}
	}

	// Ordered and de-duplicated, original first.
	if got[0] != "Semillero García 2" {
		t.Errorf("first variant = %q, want the original", got[0])
	}
	seen := map[string]bool{}
	for _, v := range got {
		if seen[v] {
			t.Errorf("duplicate variant %q", v)
		}
		seen[v] = true
	}
}

func TestVariantsMinLength(t *testing.T) {
	p := VariantPolicy{MinLength: 3, PrefixRatio: 0.7}
	for _, v := range p.Variants("ab") {
		if len([]rune(v)) < 3 {
			t.Errorf("variant %q shorter than MinLength", v)
		}
	}
}

func TestVariantsEmpty(t *testing.T) {
	if got := DefaultPolicy().Variants("   "); got != nil {
		t.Errorf("Variants of blank = %v, want nil", got)
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		in    string
		ratio float64
		want  string
	}{
		{"MADRID", 0.7, "MADR"},
		{"abcd", 0.7, "abc"},
		{"ab", 0.7, "ab"},
	}
	for _, tt := range tests {
		if got := prefix(tt.in, tt.ratio); got != tt.want {
			t.Errorf("prefix(%q, %v) = %q, want %q", tt.in, tt.ratio, got, tt.want)
		}
	}
}

func TestEscapeLiteral(t *testing.T) {
	if got := escapeLiteral("O'Donnell"); got != "O''Donnell" {
		t.Errorf("escapeLiteral = %q", got)
	}
}
