package main

import "testing"

func TestReadRows(t *testing.T) {
	r := csvRowReader{}

	t.Run("plainCSV", func(t *testing.T) {
		rows, err := r.ReadRows("a.csv", []byte("такси,2000\nкофе,700\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0][0] != "такси" || rows[1][1] != "700" {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("raggedRows", func(t *testing.T) {
		rows, err := r.ReadRows("a.csv", []byte("a,b,c\nd\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || len(rows[1]) != 1 {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("backslashEscapedQuote", func(t *testing.T) {
		rows, err := r.ReadRows("a.csv", []byte(`"he said \"hi\"",100`+"\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0][0] != `he said "hi"` {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("rejectsOtherFormats", func(t *testing.T) {
		if _, err := r.ReadRows("a.xlsx", []byte("whatever")); err == nil {
			t.Error("expected an error for .xlsx")
		}
	})
}

func TestExtractRow(t *testing.T) {
	kt := defaultKeywords()

	t.Run("expenseByDefault", func(t *testing.T) {
		c, ok := extractRow(kt, []string{"такси", "2000"}, testToday)
		if !ok {
			t.Fatal("row skipped")
		}
		if c.Type != TypeExpense || c.Amount != 2000 || c.Currency != "KZT" {
			t.Errorf("candidate = %+v", c)
		}
		if c.Description != "такси 2000" {
			t.Errorf("description = %q", c.Description)
		}
	})

	t.Run("incomeKeyword", func(t *testing.T) {
		c, ok := extractRow(kt, []string{"жалақы алдым", "150000"}, testToday)
		if !ok || c.Type != TypeIncome || c.Amount != 150000 {
			t.Errorf("candidate = %+v, ok = %v", c, ok)
		}
	})

	t.Run("noNumber", func(t *testing.T) {
		if _, ok := extractRow(kt, []string{"итого", ""}, testToday); ok {
			t.Error("numberless row produced a candidate")
		}
	})
}
