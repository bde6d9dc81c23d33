package main

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Clause is a delimiter-bounded piece of a message. Start is the byte offset
// of the first retained character in the original text, so a token position
// inside the clause maps back to the source as Start + token offset.
type Clause struct {
	Text  string
	Start int
}

const clauseDelimiters = ".,;!?\n"

// splitClauses breaks text on punctuation and whole-word conjunctions.
// Offsets across the result are non-decreasing. Text with no recognized
// delimiter comes back as a single clause at offset 0.
func splitClauses(text string, conjunctions []string) []Clause {
	var clauses []Clause
	emit := func(start, end int) {
		seg := text[start:end]
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			return
		}
		lead := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
		clauses = append(clauses, Clause{Text: trimmed, Start: start + lead})
	}

	segStart := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if strings.ContainsRune(clauseDelimiters, r) {
			emit(segStart, i)
			i += size
			segStart = i
			continue
		}
		if n := matchWordAt(text, i, conjunctions); n > 0 {
			emit(segStart, i)
			i += n
			segStart = i
			continue
		}
		i += size
	}
	emit(segStart, len(text))

	if len(clauses) == 0 {
		return []Clause{{Text: strings.TrimSpace(text), Start: 0}}
	}
	return clauses
}

// matchWordAt reports the byte length of a word from words occurring at
// position i of text as a whole word, or 0. Word boundaries are computed over
// letters and digits; regexp \b only understands ASCII.
func matchWordAt(text string, i int, words []string) int {
	if i > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:i]); isWordRune(r) {
			return 0
		}
	}
	rest := text[i:]
	for _, w := range words {
		if w == "" || len(rest) < len(w) || !strings.EqualFold(rest[:len(w)], w) {
			continue
		}
		if len(rest) > len(w) {
			if r, _ := utf8.DecodeRuneInString(rest[len(w):]); isWordRune(r) {
				continue
			}
		}
		return len(w)
	}
	return 0
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containsWord reports whether any of words occurs in text as a whole word.
func containsWord(text string, words []string) bool {
	for i := 0; i < len(text); {
		if matchWordAt(text, i, words) > 0 {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return false
}

// containsAny reports whether any of subs occurs in text as a substring.
func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(text, s) {
			return true
		}
	}
	return false
}
