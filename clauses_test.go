package main

import "testing"

var testConjunctions = []string{"және", "и", "and", "мен", "та", "和", "و"}

func TestSplitClauses(t *testing.T) {
	t.Run("conjunction", func(t *testing.T) {
		text := "такси 2000 төледім және жерден 4000 таптым"
		clauses := splitClauses(text, testConjunctions)
		if len(clauses) != 2 {
			t.Fatalf("got %d clauses, want 2: %+v", len(clauses), clauses)
		}
		if clauses[0].Text != "такси 2000 төледім" {
			t.Errorf("first clause = %q", clauses[0].Text)
		}
		if clauses[1].Text != "жерден 4000 таптым" {
			t.Errorf("second clause = %q", clauses[1].Text)
		}
	})

	t.Run("offsetsMapBack", func(t *testing.T) {
		text := "a 10, b 10"
		clauses := splitClauses(text, nil)
		if len(clauses) != 2 {
			t.Fatalf("got %d clauses, want 2", len(clauses))
		}
		for _, c := range clauses {
			if got := text[c.Start : c.Start+len(c.Text)]; got != c.Text {
				t.Errorf("offset %d maps to %q, want %q", c.Start, got, c.Text)
			}
		}
		if clauses[0].Start >= clauses[1].Start {
			t.Errorf("offsets not increasing: %d, %d", clauses[0].Start, clauses[1].Start)
		}
	})

	t.Run("conjunctionInsideWordKept", func(t *testing.T) {
		clauses := splitClauses("brand new phone 5000", testConjunctions)
		if len(clauses) != 1 {
			t.Fatalf("got %d clauses, want 1: %+v", len(clauses), clauses)
		}
	})

	t.Run("noDelimiter", func(t *testing.T) {
		clauses := splitClauses("такси 2000", testConjunctions)
		if len(clauses) != 1 || clauses[0].Start != 0 {
			t.Fatalf("got %+v, want single clause at 0", clauses)
		}
	})

	t.Run("punctuationRuns", func(t *testing.T) {
		clauses := splitClauses("обед 1500!! кофе 700.", testConjunctions)
		if len(clauses) != 2 {
			t.Fatalf("got %d clauses, want 2: %+v", len(clauses), clauses)
		}
	})
}

func TestContainsWord(t *testing.T) {
	t.Run("wholeWordOnly", func(t *testing.T) {
		if containsWord("brand", []string{"and"}) {
			t.Error("matched inside a word")
		}
		if !containsWord("black and white", []string{"and"}) {
			t.Error("missed a whole word")
		}
	})

	t.Run("cyrillicBoundary", func(t *testing.T) {
		if containsWord("дивани", []string{"и"}) {
			t.Error("matched inside a cyrillic word")
		}
		if !containsWord("чай и кофе", []string{"и"}) {
			t.Error("missed a cyrillic word")
		}
	})
}
