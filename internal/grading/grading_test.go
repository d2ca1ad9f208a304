package grading

import "testing"

func TestMatch_Integer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42 ", true},
		{"042", true},
		{"42.0", true},
		{"43", false},
		{"", false},
		{"abc", false},
	}
	for _, tc := range tests {
		if got := Match(tc.input, "42", nil); got != tc.want {
			t.Errorf("Match(%q, 42) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestMatch_Decimal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3.5", true},
		{"3.50", true},
		{" 3.500 ", true},
		{"7/2", true},
		{"3.6", false},
	}
	for _, tc := range tests {
		if got := Match(tc.input, "3.5", nil); got != tc.want {
			t.Errorf("Match(%q, 3.5) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestMatch_Fraction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3/4", true},
		{"6/8", true},
		{"3 / 4", true},
		{"-3/-4", true},
		{"0.75", true},
		{"4/3", false},
		{"3/0", false},
		{"1e0", false},
	}
	for _, tc := range tests {
		if got := Match(tc.input, "3/4", nil); got != tc.want {
			t.Errorf("Match(%q, 3/4) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestMatch_Text(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Photosynthesis", true},
		{"  photosynthesis ", true},
		{"PHOTO SYNTHESIS", false},
		{"respiration", false},
	}
	for _, tc := range tests {
		if got := Match(tc.input, "photosynthesis", nil); got != tc.want {
			t.Errorf("Match(%q, photosynthesis) = %v, want %v", tc.input, got, tc.want)
		}
	}
	if !Match("new   york", "New York", nil) {
		t.Error("inner whitespace should collapse")
	}
}

func TestMatch_Options(t *testing.T) {
	opts := []string{"Paris", "Lyon", "Nice"}
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"paris", true},
		{"2", false},
		{"4", false},
	}
	for _, tc := range tests {
		if got := Match(tc.input, "Paris", opts); got != tc.want {
			t.Errorf("Match(%q, Paris) = %v, want %v", tc.input, got, tc.want)
		}
	}

	// An answer that is itself an option is never read as an index.
	numeric := []string{"2", "4", "6", "8"}
	if !Match("4", "4", numeric) {
		t.Error("option text 4 should match 4")
	}
	if Match("4", "8", numeric) {
		t.Error("4 is an option, not the index of 8")
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"7":     KindInteger,
		"-12":   KindInteger,
		"0.25":  KindDecimal,
		"1/3":   KindFraction,
		"hello": KindText,
		"NaN":   KindText,
		"1e5":   KindText,
	}
	for in, want := range tests {
		if got := KindOf(in); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", in, got, want)
		}
	}
}
