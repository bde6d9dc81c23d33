package main

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// NumericToken is one number found in text, with the byte span it occupies in
// the source string.
type NumericToken struct {
	Value float64
	Start int
	End   int
	Raw   string
}

var (
	// Grouped numbers first (space, NBSP or comma as the thousands
	// separator), then plain integers/decimals with an optional k/к
	// shorthand suffix.
	numberRe     = regexp.MustCompile(`\d{1,3}(?:[ \x{00A0},]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?(?:\s*[kкKК])?`)
	bareNumberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

	groupedCommaRe = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

// normalizeNumber converts a raw numeric token to its value. A comma that is
// part of a thousands group is a separator; any other comma is a decimal
// point. A trailing k/к multiplies by 1000.
func normalizeNumber(tok string) (float64, bool) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return 0, false
	}

	mult := 1.0
	if r, size := utf8.DecodeLastRuneInString(s); r == 'k' || r == 'K' || r == 'к' || r == 'К' {
		mult = 1000
		s = strings.TrimSpace(s[:len(s)-size])
	}

	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case groupedCommaRe.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

// findNumbers scans text for numeric tokens, left to right. If the primary
// pattern yields nothing usable, a permissive bare-digit pass runs so that
// malformed but clearly numeric text still produces a token. Non-numeric text
// yields an empty slice.
func findNumbers(text string) []NumericToken {
	var out []NumericToken
	for _, loc := range numberRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if v, ok := normalizeNumber(raw); ok {
			out = append(out, NumericToken{Value: v, Start: loc[0], End: loc[1], Raw: raw})
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, loc := range bareNumberRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			continue
		}
		out = append(out, NumericToken{Value: v, Start: loc[0], End: loc[1], Raw: raw})
	}
	return out
}
