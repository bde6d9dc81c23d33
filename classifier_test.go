package main

import "testing"

func historyTxn(ttype TxnType, desc string) Transaction {
	return Transaction{Data: Candidate{Type: ttype, Amount: 1, Description: desc}}
}

func TestTypeSuggester(t *testing.T) {
	t.Run("untrained", func(t *testing.T) {
		ts := newTypeSuggester(nil)
		if _, ok := ts.suggest("такси 2000"); ok {
			t.Error("untrained suggester made a suggestion")
		}
	})

	t.Run("oneClassOnly", func(t *testing.T) {
		ts := newTypeSuggester([]Transaction{historyTxn(TypeExpense, "такси")})
		if _, ok := ts.suggest("такси"); ok {
			t.Error("single-class history should not train")
		}
	})

	t.Run("learnsFromHistory", func(t *testing.T) {
		ts := newTypeSuggester([]Transaction{
			historyTxn(TypeExpense, "такси қала"),
			historyTxn(TypeExpense, "кофе дүкен"),
			historyTxn(TypeIncome, "жалақы бонус"),
			historyTxn(TypeIncome, "жалақы аванс"),
		})
		if got, ok := ts.suggest("жалақы келді"); !ok || got != TypeIncome {
			t.Errorf("suggest = %v, %v, want income", got, ok)
		}
		if got, ok := ts.suggest("такси кешке"); !ok || got != TypeExpense {
			t.Errorf("suggest = %v, %v, want expense", got, ok)
		}
	})

	t.Run("noTerms", func(t *testing.T) {
		ts := newTypeSuggester([]Transaction{
			historyTxn(TypeExpense, "такси"),
			historyTxn(TypeIncome, "жалақы"),
		})
		if _, ok := ts.suggest("   "); ok {
			t.Error("blank context should not suggest")
		}
	})
}
