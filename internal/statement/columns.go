// Package statement turns an uploaded bank export into draft transactions.
// Header names are mapped to semantic fields by fuzzy multilingual synonym
// matching, which is what lets one parser cover many banks' layouts without
// per-bank code.
package statement

import "strings"

// Column is the position of one semantic field in a header row. OK is false
// when no header matched.
type Column struct {
	Index int
	OK    bool
}

// ColumnMap resolves the semantic fields of a statement's header row.
// Date and Description are mandatory; at least one of Income and Expense
// must be present (validated by the parser, not here).
type ColumnMap struct {
	Date        Column
	Description Column
	DocumentID  Column
	Income      Column
	Expense     Column
}

var dateSynonyms = []string{
	"дата операции",
	"date",
	"transaction date",
	"posting date",
	"posted date",
}

var descriptionSynonyms = []string{
	"детали операции",
	"назначение платежа",
	"description",
	"memo",
	"details",
	"transaction",
	"merchant",
	"payee",
}

var documentIDSynonyms = []string{
	"номер документа",
	"document id",
	"document number",
	"transaction id",
	"id",
}

var incomeSynonyms = []string{
	"сумма в валюте счета (поступления)",
	"сумма поступления",
	"income",
	"credit",
	"deposit",
}

var expenseSynonyms = []string{
	"сумма в валюте счета (расходы)",
	"сумма расходы",
	"amount",
	"debit",
	"expense",
	"transaction amount",
}

// MapColumns inspects the header row and locates each semantic field.
func MapColumns(headers []string) ColumnMap {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return ColumnMap{
		Date:        findColumn(lowered, dateSynonyms),
		Description: findColumn(lowered, descriptionSynonyms),
		DocumentID:  findColumn(lowered, documentIDSynonyms),
		Income:      findColumn(lowered, incomeSynonyms),
		Expense:     findColumn(lowered, expenseSynonyms),
	}
}

// findColumn returns the first header containing any synonym, in synonym
// priority order.
func findColumn(lowered []string, synonyms []string) Column {
	for _, synonym := range synonyms {
		for i, header := range lowered {
			if strings.Contains(header, synonym) {
				return Column{Index: i, OK: true}
			}
		}
	}
	return Column{}
}
