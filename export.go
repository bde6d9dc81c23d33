package main

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/pkg/errors"
)

var exportHeader = []string{"id", "type", "amount", "currency", "date", "description"}

// exportCSV renders transactions as a CSV document, header first, in store
// order.
func exportCSV(txns []Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	for _, t := range txns {
		row := []string{
			t.ID,
			string(t.Data.Type),
			strconv.FormatFloat(t.Data.Amount, 'f', 2, 64),
			t.Data.Currency,
			t.Data.Date,
			t.Data.Description,
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}
