package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkazakov/fintrack/internal/models"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			ID:             "t1",
			DocumentID:     "d1",
			CardID:         "card-1",
			Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Amount:         decimal.NewFromFloat(-1500),
			Currency:       "RUB",
			DescriptionRaw: "SUPERMARKET",
			MerchantNorm:   "Supermarket",
			CategoryID:     "food-home",
			NeedType:       models.NeedTypeNeed,
			CategorySource: models.SourceRule,
			TxType:         models.TxExpense,
		},
	}
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sampleTransactions(), ','))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "document_id")
	assert.Contains(t, lines[1], "2024-03-01")
	assert.Contains(t, lines[1], "-1500.00")
	assert.Contains(t, lines[1], "food-home")
}

func TestWriteTransactionsSemicolon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sampleTransactions(), ';'))
	assert.Contains(t, buf.String(), "d1;card-1")
}

func TestWriteTransactionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transactions.csv")
	require.NoError(t, WriteTransactionsFile(path, sampleTransactions(), ','))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "SUPERMARKET")
}
