package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClassifyAt(t *testing.T) {
	kt := defaultKeywords()

	t.Run("expenseInWindow", func(t *testing.T) {
		text := "такси 2000 төледім"
		pos := strings.Index(text, "2000")
		if got := kt.classifyAt(text, pos); got != TypeExpense {
			t.Errorf("got %q, want expense", got)
		}
	})

	t.Run("incomeInWindow", func(t *testing.T) {
		text := "жерден 4000 таптым"
		pos := strings.Index(text, "4000")
		if got := kt.classifyAt(text, pos); got != TypeIncome {
			t.Errorf("got %q, want income", got)
		}
	})

	t.Run("incomeWinsMixedWindow", func(t *testing.T) {
		text := "spent and received 500"
		pos := strings.Index(text, "500")
		if got := kt.classifyAt(text, pos); got != TypeIncome {
			t.Errorf("got %q, want income", got)
		}
	})

	t.Run("wholeTextFallback", func(t *testing.T) {
		pad := strings.Repeat("ұ", 60)
		text := "төледім " + pad + " 900"
		pos := strings.Index(text, "900")
		if got := kt.classifyAt(text, pos); got != TypeExpense {
			t.Errorf("got %q, want expense from whole-text fallback", got)
		}
	})

	t.Run("noEvidence", func(t *testing.T) {
		text := "жай сан 1500"
		pos := strings.Index(text, "1500")
		if got := kt.classifyAt(text, pos); got != TypeUnknown {
			t.Errorf("got %q, want unknown", got)
		}
	})
}

func TestLoadKeywords(t *testing.T) {
	t.Run("missingFileDefaults", func(t *testing.T) {
		kt, err := loadKeywords(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(kt.Expense) == 0 || len(kt.Income) == 0 {
			t.Error("defaults missing")
		}
	})

	t.Run("overrideReplacesList", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keywords.yaml")
		if err := os.WriteFile(path, []byte("expense:\n  - custom\n"), 0644); err != nil {
			t.Fatal(err)
		}
		kt, err := loadKeywords(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(kt.Expense) != 1 || kt.Expense[0] != "custom" {
			t.Errorf("expense = %v, want [custom]", kt.Expense)
		}
		if len(kt.Income) == 0 {
			t.Error("income default lost")
		}
	})

	t.Run("badYaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keywords.yaml")
		if err := os.WriteFile(path, []byte(":\n  - ["), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := loadKeywords(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}
