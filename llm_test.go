package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"objectWithNoise", `noise {"a":1} more {"b":2}`, `{"a":1}`},
		{"array", `sure: [{"a":1},{"b":2}] done`, `[{"a":1},{"b":2}]`},
		{"nested", `{"a":{"b":[1,2]}}`, `{"a":{"b":[1,2]}}`},
		{"braceInString", `{"a":"}"}`, `{"a":"}"}`},
		{"escapedQuoteInString", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"noJSON", "no structure here", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractFirstJSON(tc.in); got != tc.want {
				t.Errorf("extractFirstJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestModelText(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"ollama", `{"response":"hello"}`, "hello"},
		{"chat", `{"message":{"content":"hi"}}`, "hi"},
		{"openaiStyle", `{"choices":[{"message":{"content":"yo"}}]}`, "yo"},
		{"unknownShape", `{"weird":true}`, `{"weird":true}`},
		{"notJSON", "plain text", "plain text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := modelText([]byte(tc.body)); got != tc.want {
				t.Errorf("modelText(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

type stubCompletion struct {
	reply string
	err   error
}

func (s stubCompletion) Complete(ctx context.Context, system, user string) (string, error) {
	return s.reply, s.err
}

func TestFallbackAdapter(t *testing.T) {
	mk := func(reply string) *fallbackAdapter {
		return newFallbackAdapter(stubCompletion{reply: reply}, 0, zerolog.Nop())
	}
	ctx := context.Background()

	t.Run("objectWithDefaults", func(t *testing.T) {
		cands := mk(`Here you go: {"amount": 2000}`).extract(ctx, "такси 2000", testToday)
		if len(cands) != 1 {
			t.Fatalf("got %d candidates, want 1", len(cands))
		}
		c := cands[0]
		if c.Type != TypeExpense || c.Amount != 2000 || c.Currency != "KZT" {
			t.Errorf("candidate = %+v", c)
		}
		if c.Date != testToday.Format(dateLayout) {
			t.Errorf("date = %q", c.Date)
		}
		if c.Description != "такси 2000" {
			t.Errorf("description = %q", c.Description)
		}
	})

	t.Run("arrayFiltered", func(t *testing.T) {
		cands := mk(`[{"type":"income","amount":4000},{"type":"expense"},{"amount":100}]`).
			extract(ctx, "x", testToday)
		if len(cands) != 2 {
			t.Fatalf("got %d candidates, want 2: %+v", len(cands), cands)
		}
		if cands[0].Type != TypeIncome || cands[0].Amount != 4000 {
			t.Errorf("first = %+v", cands[0])
		}
		if cands[1].Type != TypeExpense || cands[1].Amount != 100 {
			t.Errorf("second = %+v", cands[1])
		}
	})

	t.Run("objectWithoutAmount", func(t *testing.T) {
		if cands := mk(`{"type":"expense"}`).extract(ctx, "x", testToday); cands != nil {
			t.Errorf("got %+v, want nil", cands)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if cands := mk("no json at all").extract(ctx, "x", testToday); cands != nil {
			t.Errorf("got %+v, want nil", cands)
		}
	})

	t.Run("clientError", func(t *testing.T) {
		f := newFallbackAdapter(stubCompletion{err: context.DeadlineExceeded}, 0, zerolog.Nop())
		if cands := f.extract(ctx, "x", testToday); cands != nil {
			t.Errorf("got %+v, want nil", cands)
		}
	})

	t.Run("nilClient", func(t *testing.T) {
		var f *fallbackAdapter
		if cands := f.extract(ctx, "x", testToday); cands != nil {
			t.Errorf("got %+v, want nil", cands)
		}
	})
}
