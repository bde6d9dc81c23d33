package main

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// TxnType is the direction of a transaction.
type TxnType string

const (
	TypeIncome  TxnType = "income"
	TypeExpense TxnType = "expense"
	// TypeUnknown means no keyword evidence was found; never persisted.
	TypeUnknown TxnType = ""
)

// keywordWindow is the classification window radius around a numeric token,
// in runes.
const keywordWindow = 40

// KeywordTable holds every keyword list the bot matches against. The zero
// value is useless; start from defaultKeywords and override lists from a yaml
// file. All entries are matched against lower-cased text.
type KeywordTable struct {
	Income       []string `yaml:"income"`
	Expense      []string `yaml:"expense"`
	Conjunctions []string `yaml:"conjunctions"`
	Greetings    []string `yaml:"greetings"`
	DeleteLast   []string `yaml:"delete_last"`
	Export       []string `yaml:"export"`
	Query        []string `yaml:"query"`
	Edit         []string `yaml:"edit"`
	File         []string `yaml:"file"`
}

func defaultKeywords() *KeywordTable {
	return &KeywordTable{
		Expense: []string{
			"жұмс", "жұмса", "шық", "төл", "төлед", "spent", "paid", "pay",
			"expense", "потрат", "платил", "花了", "支付", "трат", "кетті",
			"шықты", "шығыс",
		},
		Income: []string{
			"табу", "табы", "табып", "алды", "кірі", "кіріс", "пайда",
			"получ", "received", "got", "found", "得", "找到", "нашел",
			"таптым", "кіру",
		},
		Conjunctions: []string{"және", "и", "and", "мен", "та", "和", "و"},
		Greetings:    []string{"привет", "сәлем", "hello", "hi", "салам"},
		DeleteLast: []string{
			"удали последнее", "удали последний", "жой",
			"удалить последний", "delete last",
		},
		Export: []string{
			"экспорт", "export", "csv", "excel", "файл жібер",
			"берші excel", "отправь excel",
		},
		Query: []string{"қанша", "сколько", "how much", "多少", "жарат", "жасады"},
		Edit: []string{
			"исправ", "измен", "өңдеу", "改变", "改成", "последний",
			"change last", "редакт",
		},
		File: []string{"файл", "excel", "csv", ".xlsx", "берші", "жібер"},
	}
}

// loadKeywords reads keyword overrides from a yaml file on top of the
// defaults. A missing file just means defaults; lists present in the file
// replace the default list wholesale.
func loadKeywords(path string) (*KeywordTable, error) {
	kt := defaultKeywords()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kt, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read keyword table %v", path)
	}
	if err := yaml.Unmarshal(data, kt); err != nil {
		return nil, errors.Wrapf(err, "parse keyword table %v", path)
	}
	return kt, nil
}

// classifyAt decides income vs expense for the text around pos (a byte
// offset). It checks a symmetric window of keywordWindow runes first and falls
// back to the whole text. Income is checked before expense, so a window
// holding both kinds of keyword resolves to income.
//
// TODO: the income-first tie-break mirrors the historical list order; revisit
// once there is real usage data on mixed-keyword messages.
func (kt *KeywordTable) classifyAt(text string, pos int) TxnType {
	start, end := runeWindow(text, pos, keywordWindow)
	if t := kt.matchType(strings.ToLower(text[start:end])); t != TypeUnknown {
		return t
	}
	return kt.matchType(strings.ToLower(text))
}

// matchType runs the two-list membership test over an already lower-cased
// segment.
func (kt *KeywordTable) matchType(lowered string) TxnType {
	if containsAny(lowered, kt.Income) {
		return TypeIncome
	}
	if containsAny(lowered, kt.Expense) {
		return TypeExpense
	}
	return TypeUnknown
}

// runeWindow widens [pos, pos] by radius runes in each direction, clamped to
// the text, and returns byte offsets.
func runeWindow(text string, pos, radius int) (int, int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	start := pos
	for i := 0; i < radius && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	end := pos
	for i := 0; i < radius && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return start, end
}
