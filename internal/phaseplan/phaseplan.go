// Package phaseplan turns a charset/length/strategy selection into a
// deterministic, ordered list of attack phases for the GPU worker driver.
package phaseplan

import (
	"errors"
	"strings"
)

// ErrNoCharsetSelected is returned when none of the charset toggles are set.
var ErrNoCharsetSelected = errors.New("phaseplan: at least one charset must be selected")

// ErrInvalidLengthRange is returned when minLen/maxLen are out of bounds or
// inverted.
var ErrInvalidLengthRange = errors.New("phaseplan: invalid length range")

// Strategy selects how the planner orders its phases.
type Strategy int

const (
	LengthFirst Strategy = iota
	PatternFirst
	SmartMix
	CommonFirst
)

// Charset tokens understood by the external GPU cracker.
const (
	TokenDigits = "?d"
	TokenLower  = "?l"
	TokenUpper  = "?u"
	TokenSymbol = "?s"
)

// Selection is the user's charset and length configuration.
type Selection struct {
	Digits  bool
	Lower   bool
	Upper   bool
	Special bool
	MinLen  int
	MaxLen  int
}

// Phase is one GPU cracker invocation: a name for reporting, the custom
// charset declaration (empty if the mask uses a built-in token directly),
// the mask itself, and the length bounds it covers.
type Phase struct {
	Name    string
	Charset string // declared as custom charset 1 when non-empty
	Mask    string
	MinLen  int
	MaxLen  int
}

func tokensFor(digits, lower, upper, special bool) []string {
	var toks []string
	if digits {
		toks = append(toks, TokenDigits)
	}
	if lower {
		toks = append(toks, TokenLower)
	}
	if upper {
		toks = append(toks, TokenUpper)
	}
	if special {
		toks = append(toks, TokenSymbol)
	}
	return toks
}

// maskFor builds the GPU cracker mask for a given token set and length. A
// single token repeats directly; multiple tokens collapse into the custom
// charset-1 slot.
func maskFor(toks []string, length int) (mask, charset string) {
	var tok string
	if len(toks) == 1 {
		tok = toks[0]
	} else {
		charset = strings.Join(toks, "")
		tok = "?1"
	}
	return strings.Repeat(tok, length), charset
}

func phaseRange(name string, digits, lower, upper, special bool, minLen, maxLen int) []Phase {
	toks := tokensFor(digits, lower, upper, special)
	if len(toks) == 0 || minLen > maxLen {
		return nil
	}
	out := make([]Phase, 0, maxLen-minLen+1)
	for l := minLen; l <= maxLen; l++ {
		mask, charset := maskFor(toks, l)
		out = append(out, Phase{Name: name, Charset: charset, Mask: mask, MinLen: l, MaxLen: l})
	}
	return out
}

// Plan builds the ordered phase list for sel under strategy. Identical
// inputs always produce a byte-identical plan.
func Plan(sel Selection, strategy Strategy) ([]Phase, error) {
	if !sel.Digits && !sel.Lower && !sel.Upper && !sel.Special {
		return nil, ErrNoCharsetSelected
	}
	if sel.MinLen < 1 || sel.MaxLen > 10 || sel.MinLen > sel.MaxLen {
		return nil, ErrInvalidLengthRange
	}

	switch strategy {
	case PatternFirst:
		return planPatternFirst(sel), nil
	case SmartMix:
		return planSmartMix(sel), nil
	case CommonFirst:
		return planCommonFirst(sel), nil
	default:
		return planLengthFirst(sel), nil
	}
}

func planLengthFirst(sel Selection) []Phase {
	var out []Phase
	for l := sel.MinLen; l <= sel.MaxLen; l++ {
		out = append(out, phaseRange("length", sel.Digits, sel.Lower, sel.Upper, sel.Special, l, l)...)
	}
	return out
}

func planPatternFirst(sel Selection) []Phase {
	var out []Phase
	clampIntersect := func(lo, hi int) (int, int, bool) {
		l, h := maxi(lo, sel.MinLen), mini(hi, sel.MaxLen)
		return l, h, l <= h
	}

	families := []struct {
		name                          string
		digits, lower, upper, special bool
	}{
		{"digits", true, false, false, false},
		{"lowercase", false, true, false, false},
		{"uppercase", false, false, true, false},
		{"digits+lower", true, true, false, false},
		{"digits+upper", true, false, true, false},
		{"letters", false, true, true, false},
		{"alphanumeric", true, true, true, false},
		{"full-charset", true, true, true, true},
	}
	for _, f := range families {
		if f.digits && !sel.Digits {
			continue
		}
		if f.lower && !sel.Lower {
			continue
		}
		if f.upper && !sel.Upper {
			continue
		}
		if f.special && !sel.Special {
			continue
		}
		lo, hi, ok := clampIntersect(sel.MinLen, sel.MaxLen)
		if !ok {
			continue
		}
		out = append(out, phaseRange(f.name, f.digits, f.lower, f.upper, f.special, lo, hi)...)
	}
	return out
}

func planSmartMix(sel Selection) []Phase {
	var out []Phase

	if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, maxi(sel.MinLen, 1), mini(sel.MaxLen, 3)); ok {
		out = append(out, phaseRange("short", sel.Digits, sel.Lower, sel.Upper, sel.Special, lo, hi)...)
	}
	if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, 4, 6); ok {
		if sel.Digits {
			out = append(out, phaseRange("medium-pin", true, false, false, false, lo, hi)...)
		}
		out = append(out, phaseRange("medium", sel.Digits, sel.Lower, sel.Upper, sel.Special, lo, hi)...)
	}
	if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, 7, sel.MaxLen); ok {
		out = append(out, phaseRange("long", sel.Digits, sel.Lower, sel.Upper, sel.Special, lo, hi)...)
	}
	return out
}

func planCommonFirst(sel Selection) []Phase {
	var out []Phase
	if sel.Digits {
		if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, 4, 6); ok {
			out = append(out, phaseRange("pin", true, false, false, false, lo, hi)...)
		}
		if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, 1, 3); ok {
			out = append(out, phaseRange("short-digits", true, false, false, false, lo, hi)...)
		}
	}
	if sel.Lower || sel.Upper {
		if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, 6, 8); ok {
			out = append(out, phaseRange("dictionary-like", false, sel.Lower, sel.Upper, false, lo, hi)...)
		}
	}
	if sel.Digits && (sel.Lower || sel.Upper) {
		if lo, hi, ok := intersect(sel.MinLen, sel.MaxLen, 4, 8); ok {
			out = append(out, phaseRange("digits+letters", true, sel.Lower, sel.Upper, false, lo, hi)...)
		}
	}
	out = append(out, phaseRange("full-sweep", sel.Digits, sel.Lower, sel.Upper, sel.Special, sel.MinLen, sel.MaxLen)...)
	return out
}

func intersect(selMin, selMax, lo, hi int) (int, int, bool) {
	l, h := maxi(selMin, lo), mini(selMax, hi)
	return l, h, l <= h
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}
