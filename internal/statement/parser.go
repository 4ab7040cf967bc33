package statement

import (
	"encoding/csv"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vkazakov/fintrack/internal/classify"
	"vkazakov/fintrack/internal/currencyutils"
	"vkazakov/fintrack/internal/dateutils"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/merchant"
	"vkazakov/fintrack/internal/models"
	"vkazakov/fintrack/internal/parsererror"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Parse converts raw statement bytes into draft transactions for one card.
// Structural problems (missing mandatory columns) abort the parse with a
// descriptive error; malformed rows are skipped silently so a statement with
// some bad rows still yields all the valid ones. An empty or header-only
// file returns an empty list, not an error.
func Parse(content []byte, cardID string) ([]models.Transaction, error) {
	text := normalizeContent(string(content))
	if text == "" {
		return nil, nil
	}

	delimiter := detectDelimiter(text)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &parsererror.ValidationError{
			Source: "statement",
			Reason: "unreadable delimited content: " + err.Error(),
		}
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := dropEmptyRows(records[1:])
	if len(rows) == 0 {
		return nil, nil
	}

	columns := MapColumns(headers)
	if err := validateColumns(columns); err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, ok := buildDraft(row, columns, cardID)
		if !ok {
			continue
		}
		transactions = append(transactions, tx)
	}

	log.Info("Parsed statement",
		logging.Field{Key: "rows", Value: len(rows)},
		logging.Field{Key: "transactions", Value: len(transactions)},
		logging.Field{Key: "card_id", Value: cardID})

	classify.Apply(transactions)
	classify.LinkRefunds(transactions)

	return transactions, nil
}

// normalizeContent strips a leading byte-order marker and normalizes all
// line endings to \n.
func normalizeContent(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// detectDelimiter picks the field delimiter. Semicolon wins when present;
// banks in comma-decimal locales export semicolon-separated files.
func detectDelimiter(text string) rune {
	if strings.ContainsRune(text, ';') {
		return ';'
	}
	return ','
}

func dropEmptyRows(records [][]string) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		empty := true
		for _, value := range record {
			if strings.TrimSpace(value) != "" {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, record)
		}
	}
	return rows
}

func validateColumns(columns ColumnMap) error {
	if !columns.Date.OK || !columns.Description.OK {
		return &parsererror.ValidationError{
			Source: "statement",
			Reason: "could not find required columns: date, description",
		}
	}
	if !columns.Income.OK && !columns.Expense.OK {
		return &parsererror.ValidationError{
			Source: "statement",
			Reason: "could not find amount columns: expected an income or expense column",
		}
	}
	return nil
}

func cell(row []string, column Column) string {
	if !column.OK || column.Index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[column.Index])
}

// buildDraft extracts one draft transaction from a data row. Returns false
// when the row is unusable (empty date or description, unparseable date, no
// usable amount); callers drop such rows without failing the batch.
func buildDraft(row []string, columns ColumnMap, cardID string) (models.Transaction, bool) {
	dateStr := cell(row, columns.Date)
	description := cell(row, columns.Description)
	if dateStr == "" || description == "" {
		return models.Transaction{}, false
	}

	date, ok := dateutils.ParseDate(dateStr)
	if !ok {
		return models.Transaction{}, false
	}

	amount, ok := resolveAmount(row, columns)
	if !ok {
		return models.Transaction{}, false
	}

	documentID := cell(row, columns.DocumentID)
	if documentID == "" {
		documentID = SyntheticID(date, amount, description)
	}

	return models.Transaction{
		ID:             models.NewTransactionID(),
		DocumentID:     documentID,
		CardID:         cardID,
		CardLast4:      merchant.ExtractCardLast4(description),
		Date:           date,
		Amount:         amount,
		DescriptionRaw: description,
		MerchantRaw:    description,
		MerchantNorm:   merchant.Normalize(description),
		CategoryID:     models.CategoryOther,
		NeedType:       models.NeedTypeUnknown,
	}, true
}

// resolveAmount derives the signed amount. The expense column is consulted
// first and negated; the income column is used only when the expense column
// is absent, empty or zero. Exactly one column produces the amount, so the
// sign always matches the column it came from.
func resolveAmount(row []string, columns ColumnMap) (decimal.Decimal, bool) {
	if value := cell(row, columns.Expense); value != "" {
		if amount, ok := currencyutils.ParseAmount(value); ok && !amount.IsZero() {
			return amount.Abs().Neg(), true
		}
	}
	if value := cell(row, columns.Income); value != "" {
		if amount, ok := currencyutils.ParseAmount(value); ok && !amount.IsZero() {
			return amount.Abs(), true
		}
	}
	return decimal.Zero, false
}

// SyntheticID derives a deterministic document ID from row content for rows
// without a bank-provided one. The same (date, amount, description) triple
// always yields the same ID, which makes re-imports idempotent.
func SyntheticID(date time.Time, amount decimal.Decimal, description string) string {
	h := fnv.New32a()
	h.Write([]byte(date.UTC().Format(time.RFC3339)))
	h.Write([]byte{'|'})
	h.Write([]byte(amount.String()))
	h.Write([]byte{'|'})
	h.Write([]byte(description))
	return "synthetic_" + strconv.FormatUint(uint64(h.Sum32()), 36)
}
