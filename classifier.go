package main

import (
	"strings"

	"github.com/jbrukh/bayesian"
)

var (
	classIncome  = bayesian.Class("income")
	classExpense = bayesian.Class("expense")
)

// typeSuggester learns income/expense vocabulary from the user's stored
// transactions and offers a guess for amounts the keyword pass could not
// classify. Suggestions are hints for the confirmation prompt only.
type typeSuggester struct {
	cl      *bayesian.Classifier
	trained bool
}

// newTypeSuggester trains on the descriptions of past transactions. It needs
// at least one sample of each class; until then suggest reports no result.
func newTypeSuggester(txns []Transaction) *typeSuggester {
	ts := &typeSuggester{
		cl: bayesian.NewClassifierTfIdf(classIncome, classExpense),
	}
	var nInc, nExp int
	for _, txn := range txns {
		terms := classificationTerms(txn.Data.Description)
		if len(terms) == 0 {
			continue
		}
		switch txn.Data.Type {
		case TypeIncome:
			ts.cl.Learn(terms, classIncome)
			nInc++
		case TypeExpense:
			ts.cl.Learn(terms, classExpense)
			nExp++
		}
	}
	if nInc > 0 && nExp > 0 {
		ts.cl.ConvertTermsFreqToTfIdf()
		ts.trained = true
	}
	return ts
}

// suggest returns the more likely type for the context text, or false when the
// model is untrained or the text carries no usable terms.
func (ts *typeSuggester) suggest(contextText string) (TxnType, bool) {
	if ts == nil || !ts.trained {
		return TypeUnknown, false
	}
	terms := classificationTerms(contextText)
	if len(terms) == 0 {
		return TypeUnknown, false
	}
	scores, _, _ := ts.cl.LogScores(terms)
	if scores[0] >= scores[1] {
		return TypeIncome, true
	}
	return TypeExpense, true
}

// classificationTerms lower-cases and field-splits a description, dropping
// decoration characters.
func classificationTerms(desc string) []string {
	desc = strings.ToLower(desc)
	desc = strings.ReplaceAll(desc, "*", "")
	return strings.Fields(desc)
}
