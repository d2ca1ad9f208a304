// Package grading decides whether a student's answer matches the stored
// correct answer of a question.
package grading

import (
	"math/big"
	"strconv"
	"strings"
)

// Kind is the answer form inferred from a correct answer.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDecimal
	KindFraction
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindFraction:
		return "fraction"
	default:
		return "text"
	}
}

// KindOf infers the answer form of s.
func KindOf(s string) Kind {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KindInteger
	}
	if _, _, ok := parseFraction(s); ok {
		return KindFraction
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "eEnN") {
		return KindDecimal
	}
	return KindText
}

// Match reports whether answer is correct.
//
// Rules:
//   - surrounding and repeated whitespace is ignored
//   - text comparison is case-insensitive
//   - numeric answers compare by value, so "2/4" matches "1/2", "3.50"
//     matches "3.5", "007" matches "7" and "0.75" matches "3/4"
//   - with options, a 1-based option number selects that option unless the
//     answer is itself one of the options
func Match(answer, correct string, options []string) bool {
	answer = Normalize(answer)
	if answer == "" {
		return false
	}
	answer = resolveOption(answer, options)

	if KindOf(correct) != KindText {
		a, okA := value(answer)
		c, okC := value(correct)
		if okA && okC {
			return a.Cmp(c) == 0
		}
	}
	return answer == Normalize(correct)
}

// Normalize lowercases s and collapses its whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func resolveOption(answer string, options []string) string {
	if len(options) == 0 {
		return answer
	}
	for _, o := range options {
		if Normalize(o) == answer {
			return answer
		}
	}
	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(options) {
		return Normalize(options[idx-1])
	}
	return answer
}

// value parses an integer, decimal or fraction into an exact rational.
func value(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if num, den, ok := parseFraction(s); ok {
		if den == 0 {
			return nil, false
		}
		return big.NewRat(num, den), true
	}
	if strings.ContainsAny(s, "eEnN/") {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}

// parseFraction parses "a/b" with optional spaces around the slash.
func parseFraction(s string) (int64, int64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return n, d, true
}
