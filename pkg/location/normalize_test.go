package location

import (
	"strings"
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Cambodia", "Cambodia"},
		{"two words", "Phnom Penh", "Phnom Penh"},
		{"trims", "  Berlin  ", "Berlin"},
		{"collapses runs", "New \t York\n City", "New York City"},
		{"strips punctuation", `location:"Paris" sort:followers`, "locationParis sortfollowers"},
		{"strips quotes", `"Tokyo"`, "Tokyo"},
		{"unicode letters", "São Paulo", "São Paulo"},
		{"khmer", "ភ្នំពេញ", "ភ្នំពេញ"},
		{"digits", "District 9", "District 9"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"symbols only", "!@#$%^&*()", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	inputs := []string{
		"a-b_c.d,e;f", "  mixed  CASE 42 ", "日本 東京!", "--", " a  b   c ",
		`"injection: attempt" OR 1=1`, "tabs\tand\nnewlines",
	}

	for _, in := range inputs {
		out := Normalize(in)

		if out != strings.TrimSpace(out) {
			t.Errorf("Normalize(%q) has leading/trailing space: %q", in, out)
		}
		if strings.Contains(out, "  ") {
			t.Errorf("Normalize(%q) contains a double space: %q", in, out)
		}
		for _, r := range out {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
				t.Errorf("Normalize(%q) leaked %q", in, r)
			}
		}
	}
}
