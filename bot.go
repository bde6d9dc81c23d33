package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var explicitDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Bot owns the conversation logic: it maps inbound messages to store
// operations and renders the replies.
type Bot struct {
	store    Store
	kw       *KeywordTable
	fallback *fallbackAdapter
	rows     RowReader
	filesDir string
	log      zerolog.Logger
	now      func() time.Time
}

func newBot(store Store, kw *KeywordTable, fallback *fallbackAdapter, filesDir string, log zerolog.Logger) *Bot {
	return &Bot{
		store:    store,
		kw:       kw,
		fallback: fallback,
		rows:     csvRowReader{},
		filesDir: filesDir,
		log:      log,
		now:      time.Now,
	}
}

// Run pumps the transport until it reports io.EOF or the context ends.
// Transport errors are logged and retried; they never kill the loop.
func (b *Bot) Run(ctx context.Context, tr ChatTransport) error {
	for {
		in, err := tr.Receive(ctx)
		switch {
		case err == io.EOF || errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			b.log.Warn().Err(err).Msg("receive failed")
			time.Sleep(2 * time.Second)
			continue
		}

		var replies []Outbound
		if in.Filename != "" {
			replies = b.HandleDocument(ctx, in.UserID, in.Filename, in.FileData)
		} else {
			replies = b.HandleText(ctx, in.UserID, in.Text)
		}
		for _, out := range replies {
			if err := tr.Send(in.UserID, out); err != nil {
				b.log.Error().Err(err).Int64("user", in.UserID).Msg("send failed")
			}
		}
	}
}

// HandleText routes one chat message and returns the replies, in order.
func (b *Bot) HandleText(ctx context.Context, userID int64, text string) []Outbound {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	low := strings.ToLower(text)
	if containsWord(low, b.kw.Greetings) {
		return []Outbound{{Text: msgGreeting}}
	}

	intent := detectIntent(b.kw, text)
	b.log.Debug().Int64("user", userID).Stringer("intent", intent).Msg("message routed")

	var replies []Outbound
	var err error
	switch intent {
	case IntentDeleteLast:
		replies, err = b.handleDelete(userID, text)
	case IntentExport, IntentFileRequest:
		replies, err = b.handleFileRequest(userID, text, low)
	case IntentQuery:
		replies, err = b.handleQuery(userID, text)
	case IntentEdit:
		replies, err = b.handleEdit(userID, text)
	default:
		replies, err = b.handleRecord(ctx, userID, text)
	}
	if err != nil {
		b.log.Error().Err(err).Int64("user", userID).Stringer("intent", intent).Msg("handler failed")
		return []Outbound{{Text: fmt.Sprintf(msgError, err)}}
	}
	return replies
}

func (b *Bot) handleDelete(userID int64, text string) ([]Outbound, error) {
	n := 1
	if m := bareNumberRe.FindString(text); m != "" {
		if v, err := strconv.Atoi(m); err == nil && v > 0 {
			n = v
		}
	}
	removed, err := b.store.RemoveLastNByUser(userID, n)
	if err != nil {
		return nil, err
	}
	return []Outbound{{Text: fmt.Sprintf(msgDeleted, removed)}}, nil
}

// handleFileRequest serves export and re-send asks. A day mention (today words
// or an explicit date) produces a fresh export; a filename or filename token
// re-sends a stored file; anything else is not found.
func (b *Bot) handleFileRequest(userID int64, text, low string) ([]Outbound, error) {
	if strings.Contains(low, "бүгін") || strings.Contains(low, "today") {
		return b.exportForDate(userID, b.now())
	}

	files, err := b.store.ListFilesByUser(userID)
	if err != nil {
		return nil, err
	}
	if entry, ok := findFile(files, low); ok {
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "read stored file %v", entry.Filename)
		}
		return []Outbound{{Text: msgExportReady, Filename: entry.Filename, Data: data}}, nil
	}

	if m := explicitDateRe.FindString(text); m != "" {
		day, err := time.Parse(dateLayout, m)
		if err == nil {
			return b.exportForDate(userID, day)
		}
	}
	return []Outbound{{Text: msgFileNotFound}}, nil
}

// findFile matches the newest stored file whose name, or any word of the
// message, anchors it: full filename in the text, a date in the text matching
// the file's day, or a message token inside the filename.
func findFile(files []FileIndexEntry, low string) (FileIndexEntry, bool) {
	for i := len(files) - 1; i >= 0; i-- {
		if strings.Contains(low, strings.ToLower(files[i].Filename)) {
			return files[i], true
		}
	}
	if m := explicitDateRe.FindString(low); m != "" {
		for i := len(files) - 1; i >= 0; i-- {
			if files[i].Timestamp.Format(dateLayout) == m {
				return files[i], true
			}
		}
	}
	for _, tok := range strings.Fields(low) {
		if len(tok) < 4 {
			continue
		}
		for i := len(files) - 1; i >= 0; i-- {
			if strings.Contains(strings.ToLower(files[i].Filename), tok) {
				return files[i], true
			}
		}
	}
	return FileIndexEntry{}, false
}

func (b *Bot) exportForDate(userID int64, day time.Time) ([]Outbound, error) {
	txns, err := b.store.ListByUserAndDate(userID, day)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return []Outbound{{Text: msgNoTransactions}}, nil
	}
	data, err := exportCSV(txns)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("export_%d_%s.csv", userID, day.Format(dateLayout))
	return []Outbound{{Text: msgExportReady, Filename: name, Data: data}}, nil
}

func (b *Bot) handleQuery(userID int64, text string) ([]Outbound, error) {
	day := b.now()
	if m := explicitDateRe.FindString(text); m != "" {
		if parsed, err := time.Parse(dateLayout, m); err == nil {
			day = parsed
		}
	}
	txns, err := b.store.ListByUserAndDate(userID, day)
	if err != nil {
		return nil, err
	}
	income, expense := sumByType(txns)
	net := income.Sub(expense)
	return []Outbound{{Text: fmt.Sprintf(msgTodaySummary,
		income.StringFixed(2), expense.StringFixed(2), signedFixed(net))}}, nil
}

// handleEdit rewrites the newest transaction. A number in the message sets the
// amount; otherwise an expense or income keyword flips the type.
func (b *Bot) handleEdit(userID int64, text string) ([]Outbound, error) {
	low := strings.ToLower(text)

	var mutate func(*Candidate)
	if ms := bareNumberRe.FindAllString(strings.ReplaceAll(text, ",", "."), -1); len(ms) > 0 {
		v, err := strconv.ParseFloat(ms[len(ms)-1], 64)
		if err == nil {
			mutate = func(c *Candidate) { c.Amount = v }
		}
	}
	if mutate == nil {
		switch {
		case containsAny(low, b.kw.Expense):
			mutate = func(c *Candidate) { c.Type = TypeExpense }
		case containsAny(low, b.kw.Income):
			mutate = func(c *Candidate) { c.Type = TypeIncome }
		}
	}
	if mutate == nil {
		return []Outbound{{Text: msgEditHelp}}, nil
	}

	found, err := b.store.MutateLastByUser(userID, mutate)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Outbound{{Text: msgNothingToEdit}}, nil
	}
	return []Outbound{{Text: msgEdited}}, nil
}

// handleRecord extracts and saves transactions. Extraction degrades in steps:
// keyword pass, LLM fallback, then a lone number treated as an expense. Fully
// unclassifiable amounts come back as a confirmation ask instead of records.
func (b *Bot) handleRecord(ctx context.Context, userID int64, text string) ([]Outbound, error) {
	today := b.now()
	cands, unknowns := extractTransactions(b.kw, text, today)

	if len(cands) == 0 && len(unknowns) == 0 {
		cands = b.fallback.extract(ctx, text, today)
	}
	if len(cands) == 0 && len(unknowns) == 0 {
		if toks := findNumbers(text); len(toks) > 0 {
			cands = append(cands, Candidate{
				Type:        TypeExpense,
				Amount:      toks[0].Value,
				Currency:    currencyKZT,
				Date:        today.Format(dateLayout),
				Description: truncate(text, descLimit),
			})
		}
	}
	if len(cands) == 0 && len(unknowns) == 0 {
		return []Outbound{{Text: msgNoAmount}}, nil
	}

	var replies []Outbound
	if len(cands) > 0 {
		txns, err := b.store.AppendTransactions(userID, text, cands)
		if err != nil {
			return nil, err
		}
		replies = append(replies, Outbound{Text: savedReply(txns)})
	}
	if len(unknowns) > 0 {
		replies = append(replies, Outbound{Text: b.unknownReply(userID, unknowns)})
	}
	return replies, nil
}

func savedReply(txns []Transaction) string {
	var lines []string
	for i, t := range txns {
		lines = append(lines, fmt.Sprintf("%d) %s - %.2f KZT - %s",
			i+1, typeLabel(t.Data.Type), t.Data.Amount, truncate(t.Data.Description, 60)))
	}
	income, expense := sumByType(txns)
	net := income.Sub(expense)
	return fmt.Sprintf(msgSavedMulti, len(txns), strings.Join(lines, "\n"),
		income.StringFixed(2), expense.StringFixed(2), signedFixed(net))
}

// unknownReply lists the undecided amounts, with a bayesian guess when the
// user's history supports one.
func (b *Bot) unknownReply(userID int64, unknowns []UnknownAmount) string {
	var suggester *typeSuggester
	if history, err := b.store.ListByUser(userID); err == nil {
		suggester = newTypeSuggester(history)
	}

	var parts []string
	for _, u := range unknowns {
		part := fmt.Sprintf("%v (%s)", u.Amount, truncate(u.Context, 30))
		if t, ok := suggester.suggest(u.Context); ok {
			part += fmt.Sprintf(" мүмкін: %s", typeLabel(t))
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf(msgAskConfirmUnknown, strings.Join(parts, "; "))
}

// HandleDocument stores an uploaded file, imports its rows when it parses as a
// spreadsheet, and indexes it either way.
func (b *Bot) HandleDocument(ctx context.Context, userID int64, filename string, data []byte) []Outbound {
	stored := fmt.Sprintf("%d_%s", b.now().Unix(), filepath.Base(filename))
	path := filepath.Join(b.filesDir, stored)
	if err := os.WriteFile(path, data, 0644); err != nil {
		err = errors.Wrapf(err, "store upload %v", filename)
		b.log.Error().Err(err).Int64("user", userID).Msg("upload failed")
		return []Outbound{{Text: fmt.Sprintf(msgError, err)}}
	}

	rows, err := b.rows.ReadRows(filename, data)
	if err != nil {
		b.log.Warn().Err(err).Str("file", filename).Msg("upload not importable")
		if _, ierr := b.store.IndexFile(userID, filename, path); ierr != nil {
			return []Outbound{{Text: fmt.Sprintf(msgError, ierr)}}
		}
		return []Outbound{{Text: msgFileUnreadable}}
	}

	today := b.now()
	var cands []Candidate
	for _, row := range rows {
		if c, ok := extractRow(b.kw, row, today); ok {
			cands = append(cands, c)
		}
	}
	if _, err := b.store.AppendTransactions(userID, "file:"+filename, cands); err != nil {
		return []Outbound{{Text: fmt.Sprintf(msgError, err)}}
	}
	if _, err := b.store.IndexFile(userID, filename, path); err != nil {
		return []Outbound{{Text: fmt.Sprintf(msgError, err)}}
	}
	return []Outbound{{Text: fmt.Sprintf(msgFileSaved, len(cands))}}
}

func sumByType(txns []Transaction) (income, expense decimal.Decimal) {
	for _, t := range txns {
		amt := decimal.NewFromFloat(t.Data.Amount)
		if t.Data.Type == TypeIncome {
			income = income.Add(amt)
		} else {
			expense = expense.Add(amt)
		}
	}
	return income, expense
}

func signedFixed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Sign() > 0 {
		return "+" + s
	}
	return s
}
