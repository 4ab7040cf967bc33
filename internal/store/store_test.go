package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkazakov/fintrack/internal/models"
)

func sampleTx(docID, cardID string, amount int64, day int) models.Transaction {
	return models.Transaction{
		ID:             models.NewTransactionID(),
		DocumentID:     docID,
		CardID:         cardID,
		Date:           time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.NewFromInt(amount),
		Currency:       "RUB",
		DescriptionRaw: "SHOP " + docID,
		MerchantRaw:    "SHOP " + docID,
		MerchantNorm:   "Shop " + docID,
		CategoryID:     models.CategoryOther,
		NeedType:       models.NeedTypeUnknown,
		TxType:         models.TxExpense,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	memStore := NewMemoryStore()

	require.NoError(t, memStore.BulkInsert([]models.Transaction{
		sampleTx("d1", "card-1", -100, 2),
		sampleTx("d2", "card-1", -200, 1),
		sampleTx("d3", "card-2", -300, 1),
	}))

	ids, err := memStore.ListDocumentIDs("card-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"d1": true, "d2": true}, ids)

	stored, err := memStore.ListByCard("card-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "d2", stored[0].DocumentID, "oldest first")

	require.NoError(t, memStore.Clear("card-1"))
	stored, err = memStore.ListByCard("card-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	other, err := memStore.ListByCard("card-2")
	require.NoError(t, err)
	assert.Len(t, other, 1, "clearing one card must not touch another")
}

func TestMemoryStoreBulkUpdateKeepsClassification(t *testing.T) {
	memStore := NewMemoryStore()

	original := sampleTx("d1", "card-1", -100, 1)
	original.CategoryID = "food-home"
	original.CategorySource = models.SourceManual
	original.Notes = "weekly groceries"
	require.NoError(t, memStore.BulkInsert([]models.Transaction{original}))

	incoming := sampleTx("d1", "card-1", -150, 1)
	require.NoError(t, memStore.BulkUpdate("card-1", []models.Transaction{incoming}))

	stored, err := memStore.ListByCard("card-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.True(t, decimal.NewFromInt(-150).Equal(stored[0].Amount), "statement-derived field is refreshed")
	assert.Equal(t, "food-home", stored[0].CategoryID)
	assert.Equal(t, models.SourceManual, stored[0].CategorySource)
	assert.Equal(t, "weekly groceries", stored[0].Notes)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")
	sqlStore, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer sqlStore.Close()

	posted := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	tx := sampleTx("d1", "card-1", -100, 1)
	tx.PostedDate = &posted
	tx.IsTransfer = true
	require.NoError(t, sqlStore.BulkInsert([]models.Transaction{tx}))

	stored, err := sqlStore.ListByCard("card-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.Equal(t, tx.ID, stored[0].ID)
	assert.True(t, tx.Amount.Equal(stored[0].Amount))
	assert.True(t, tx.Date.Equal(stored[0].Date))
	require.NotNil(t, stored[0].PostedDate)
	assert.True(t, posted.Equal(*stored[0].PostedDate))
	assert.True(t, stored[0].IsTransfer)

	ids, err := sqlStore.ListDocumentIDs("card-1")
	require.NoError(t, err)
	assert.True(t, ids["d1"])
}

func TestSQLiteStoreBulkUpdateKeepsClassification(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")
	sqlStore, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer sqlStore.Close()

	original := sampleTx("d1", "card-1", -100, 1)
	original.CategoryID = "food-home"
	original.CategorySource = models.SourceManual
	require.NoError(t, sqlStore.BulkInsert([]models.Transaction{original}))

	incoming := sampleTx("d1", "card-1", -150, 1)
	require.NoError(t, sqlStore.BulkUpdate("card-1", []models.Transaction{incoming}))

	stored, err := sqlStore.ListByCard("card-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, decimal.NewFromInt(-150).Equal(stored[0].Amount))
	assert.Equal(t, "food-home", stored[0].CategoryID)
	assert.Equal(t, models.SourceManual, stored[0].CategorySource)
}

func TestRuleStoreSaveAndLoad(t *testing.T) {
	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	ruleStore := NewRuleStore(rulesFile)
	require.NoError(t, ruleStore.Load(), "missing file starts an empty store")
	assert.Empty(t, ruleStore.List())

	ruleStore.Upsert(models.Rule{ID: "r1", Priority: 5, MatchType: models.MatchContains, Pattern: "netflix", CategoryID: "subscriptions"})
	ruleStore.Upsert(models.Rule{ID: "r2", Priority: 1, MatchType: models.MatchExact, Pattern: "Ozon", CategoryID: "shopping"})
	require.NoError(t, ruleStore.Save())

	reloaded := NewRuleStore(rulesFile)
	require.NoError(t, reloaded.Load())
	rules := reloaded.List()
	require.Len(t, rules, 2)
	assert.Equal(t, "netflix", rules[0].Pattern)

	reloaded.Delete("r1")
	require.NoError(t, reloaded.Save())

	final := NewRuleStore(rulesFile)
	require.NoError(t, final.Load())
	require.Len(t, final.List(), 1)
	assert.Equal(t, "r2", final.List()[0].ID)
}

func TestCategoryStoreFallsBackToDefaults(t *testing.T) {
	categoryStore := NewCategoryStore(filepath.Join(t.TempDir(), "nope.yaml"))
	categories, err := categoryStore.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategories, categories)
}

func TestCategoryStoreReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "categories:\n  - id: coffee\n    name: Кофе\n    default_need_type: want\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	categories, err := NewCategoryStore(path).LoadCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "coffee", categories[0].ID)
	assert.Equal(t, models.NeedTypeWant, categories[0].DefaultNeedType)
}

func TestBudgetStoreLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.yaml")
	content := `card_balance: 5000
savings_accounts:
  - id: sav-1
    balance: 10000
    annual_interest_rate: 12
recurring_expenses:
  - id: rent
    amount: 1000
    period: monthly
    source:
      kind: card
budgets:
  - id: b1
    period: "2024-03"
    category_id: food-home
    limit_amount: 20000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := NewBudgetStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 5000.0, config.CardBalance)
	require.Len(t, config.SavingsAccounts, 1)
	assert.Equal(t, 12.0, config.SavingsAccounts[0].AnnualInterestRate)
	require.Len(t, config.RecurringExpense, 1)
	assert.Equal(t, models.PeriodMonthly, config.RecurringExpense[0].Period)
	assert.Equal(t, models.FundsCard, config.RecurringExpense[0].Source.Kind)
	require.Len(t, config.Budgets, 1)
	assert.Equal(t, 20000.0, config.Budgets[0].LimitAmount)
}

func TestBudgetStoreMissingFile(t *testing.T) {
	config, err := NewBudgetStore(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	require.NoError(t, err)
	assert.Zero(t, config.CardBalance)
	assert.Empty(t, config.Budgets)
}
