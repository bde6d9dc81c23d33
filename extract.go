package main

import (
	"strings"
	"time"
)

const (
	descLimit   = 240
	currencyKZT = "KZT"
	dateLayout  = "2006-01-02"
)

// Candidate is a fully classified, not yet persisted transaction. The json
// tags double as the contract for the LLM fallback payload.
type Candidate struct {
	Type        TxnType `json:"type"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// UnknownAmount is a numeric token whose type could not be determined. It is
// surfaced to the user for confirmation, never coerced to a type.
type UnknownAmount struct {
	Amount   float64
	Context  string
	Position int
}

// extractTransactions turns free-form text into zero or more candidates plus
// the amounts it refuses to guess about. Type inference is scoped per clause:
// the nearest keyword inside the clause wins, and only a keyword-free clause
// consults the windowed whole-text cascade. That keeps "taxi 2000 and found
// 4000" from cross-contaminating.
func extractTransactions(kt *KeywordTable, text string, today time.Time) ([]Candidate, []UnknownAmount) {
	var cands []Candidate
	var unknowns []UnknownAmount

	for _, clause := range splitClauses(text, kt.Conjunctions) {
		toks := findNumbers(clause.Text)
		if len(toks) == 0 {
			continue
		}
		lowered := strings.ToLower(clause.Text)
		for _, tok := range toks {
			absPos := clause.Start + tok.Start
			ttype := nearestKeywordType(kt, lowered, tok.Start)
			if ttype == TypeUnknown {
				ttype = kt.classifyAt(text, absPos)
			}
			if ttype == TypeUnknown {
				unknowns = append(unknowns, UnknownAmount{
					Amount:   tok.Value,
					Context:  clause.Text,
					Position: absPos,
				})
				continue
			}
			cands = append(cands, Candidate{
				Type:        ttype,
				Amount:      tok.Value,
				Currency:    currencyKZT,
				Date:        today.Format(dateLayout),
				Description: truncate(clause.Text, descLimit),
			})
		}
	}
	return cands, unknowns
}

// nearestKeywordType ranks every keyword occurrence in the lowered clause by
// distance to the token and returns the type of the closest one. Income
// candidates are considered first, so an exact distance tie resolves to
// income.
func nearestKeywordType(kt *KeywordTable, loweredClause string, tokStart int) TxnType {
	best := TypeUnknown
	bestDist := -1
	consider := func(w string, t TxnType) {
		p := strings.Index(loweredClause, w)
		if p < 0 {
			return
		}
		d := p - tokStart
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = t, d
		}
	}
	for _, w := range kt.Income {
		consider(w, TypeIncome)
	}
	for _, w := range kt.Expense {
		consider(w, TypeExpense)
	}
	return best
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	if utf8Count := len([]rune(s)); utf8Count <= n {
		return s
	}
	return string([]rune(s)[:n])
}
