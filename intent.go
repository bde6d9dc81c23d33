package main

import "strings"

// Intent is what an inbound message asks the bot to do.
type Intent int

const (
	IntentRecord Intent = iota
	IntentDeleteLast
	IntentExport
	IntentQuery
	IntentEdit
	IntentFileRequest
)

func (i Intent) String() string {
	switch i {
	case IntentDeleteLast:
		return "delete_last"
	case IntentExport:
		return "export"
	case IntentQuery:
		return "query"
	case IntentEdit:
		return "edit"
	case IntentFileRequest:
		return "file_request"
	default:
		return "record"
	}
}

// detectIntent classifies a whole message. The order is a deliberate
// tie-break: delete phrases outrank export/file phrases, which outrank the
// amount-question words, then edit phrases, then generic file words. Anything
// else records a transaction.
func detectIntent(kt *KeywordTable, text string) Intent {
	low := strings.ToLower(text)
	switch {
	case containsAny(low, kt.DeleteLast):
		return IntentDeleteLast
	case containsAny(low, kt.Export):
		return IntentExport
	case containsWord(low, kt.Query):
		return IntentQuery
	case containsAny(low, kt.Edit):
		return IntentEdit
	case containsAny(low, kt.File):
		return IntentFileRequest
	}
	return IntentRecord
}
