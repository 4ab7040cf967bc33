package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkazakov/fintrack/internal/models"
)

func testCategories() []models.Category {
	return []models.Category{
		{ID: "subscriptions", DefaultNeedType: models.NeedTypeMixed},
		{ID: "food-home", DefaultNeedType: models.NeedTypeNeed},
		{ID: "shopping", DefaultNeedType: models.NeedTypeWant},
	}
}

func TestCategorizeContains(t *testing.T) {
	engine := NewEngine([]models.Rule{
		{ID: "r1", Priority: 10, MatchType: models.MatchContains, Pattern: "netflix", CategoryID: "subscriptions"},
	}, testCategories())

	tx := models.Transaction{MerchantNorm: "Netflix"}
	result, ok := engine.Categorize(&tx)
	require.True(t, ok)
	assert.Equal(t, "subscriptions", result.CategoryID)
	assert.Equal(t, models.NeedTypeMixed, result.NeedType, "category default applies when the rule has no need type")
	assert.Equal(t, "r1", result.RuleID)
}

func TestCategorizeMatchTypes(t *testing.T) {
	engine := NewEngine([]models.Rule{
		{ID: "exact", Priority: 3, MatchType: models.MatchExact, Pattern: "Ozon", CategoryID: "shopping"},
		{ID: "regex", Priority: 2, MatchType: models.MatchRegex, Pattern: `^пят[её]рочка`, CategoryID: "food-home"},
		{ID: "contains", Priority: 1, MatchType: models.MatchContains, Pattern: "маг", CategoryID: "food-home"},
	}, testCategories())

	tests := []struct {
		name         string
		merchantNorm string
		expectedRule string
		matched      bool
	}{
		{name: "exact case-insensitive", merchantNorm: "OZON", expectedRule: "exact", matched: true},
		{name: "exact requires full match", merchantNorm: "Ozon Bank", matched: false},
		{name: "regex", merchantNorm: "Пятёрочка", expectedRule: "regex", matched: true},
		{name: "contains", merchantNorm: "Магнит", expectedRule: "contains", matched: true},
		{name: "no match", merchantNorm: "Аптека", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := models.Transaction{MerchantNorm: tt.merchantNorm}
			result, ok := engine.Categorize(&tx)
			require.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.expectedRule, result.RuleID)
			}
		})
	}
}

func TestCategorizePriorityOrder(t *testing.T) {
	engine := NewEngine([]models.Rule{
		{ID: "low", Priority: 1, MatchType: models.MatchContains, Pattern: "ozon", CategoryID: "food-home"},
		{ID: "high", Priority: 10, MatchType: models.MatchContains, Pattern: "ozon", CategoryID: "shopping"},
	}, testCategories())

	tx := models.Transaction{MerchantNorm: "Ozon"}
	result, ok := engine.Categorize(&tx)
	require.True(t, ok)
	assert.Equal(t, "high", result.RuleID, "higher priority wins")
}

func TestCategorizePriorityTieBreak(t *testing.T) {
	// Same priority: the rule with the lexicographically smaller ID wins,
	// so repeated runs give identical results.
	engine := NewEngine([]models.Rule{
		{ID: "b-rule", Priority: 5, MatchType: models.MatchContains, Pattern: "ozon", CategoryID: "food-home"},
		{ID: "a-rule", Priority: 5, MatchType: models.MatchContains, Pattern: "ozon", CategoryID: "shopping"},
	}, testCategories())

	for i := 0; i < 3; i++ {
		tx := models.Transaction{MerchantNorm: "Ozon"}
		result, ok := engine.Categorize(&tx)
		require.True(t, ok)
		assert.Equal(t, "a-rule", result.RuleID)
	}
}

func TestCategorizeInvalidRegexNeverMatches(t *testing.T) {
	engine := NewEngine([]models.Rule{
		{ID: "bad", Priority: 10, MatchType: models.MatchRegex, Pattern: "([", CategoryID: "shopping"},
		{ID: "good", Priority: 1, MatchType: models.MatchContains, Pattern: "ozon", CategoryID: "shopping"},
	}, testCategories())

	tx := models.Transaction{MerchantNorm: "Ozon"}
	result, ok := engine.Categorize(&tx)
	require.True(t, ok)
	assert.Equal(t, "good", result.RuleID)
}

func TestCategorizeSkipsTransfers(t *testing.T) {
	engine := NewEngine([]models.Rule{
		{ID: "r1", Priority: 1, MatchType: models.MatchContains, Pattern: "сбп", CategoryID: "shopping"},
	}, testCategories())

	tx := models.Transaction{MerchantNorm: "СБП", IsTransfer: true}
	_, ok := engine.Categorize(&tx)
	assert.False(t, ok)
}

func TestApplyToBatch(t *testing.T) {
	engine := NewEngine([]models.Rule{
		{ID: "r1", Priority: 10, MatchType: models.MatchContains, Pattern: "netflix", CategoryID: "subscriptions", NeedType: models.NeedTypeWant},
	}, testCategories())

	batch := []models.Transaction{
		{MerchantNorm: "Netflix", CategoryID: models.CategoryOther},
		{MerchantNorm: "Аптека", CategoryID: models.CategoryOther},
		{MerchantNorm: "Netflix", CategoryID: "food-home", CategorySource: models.SourceManual, NeedType: models.NeedTypeNeed},
	}

	categorized := engine.ApplyToBatch(batch)
	assert.Equal(t, 1, categorized)

	assert.Equal(t, "subscriptions", batch[0].CategoryID)
	assert.Equal(t, models.NeedTypeWant, batch[0].NeedType)
	assert.Equal(t, models.SourceRule, batch[0].CategorySource)
	assert.Equal(t, 1.0, batch[0].CategoryConfidence)

	assert.Equal(t, models.CategoryOther, batch[1].CategoryID, "unmatched stays in fallback category")

	assert.Equal(t, "food-home", batch[2].CategoryID, "manual assignment is sticky")
	assert.Equal(t, models.NeedTypeNeed, batch[2].NeedType)
}

func TestFromTransaction(t *testing.T) {
	existing := []models.Rule{
		{ID: "r1", Priority: 5},
		{ID: "r2", Priority: 12},
	}
	tx := models.Transaction{MerchantNorm: "Кофейня"}

	rule := FromTransaction(&tx, "coffee", models.NeedTypeWant, existing)

	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, 13, rule.Priority, "new rule must outrank every existing rule")
	assert.Equal(t, models.MatchContains, rule.MatchType)
	assert.Equal(t, "Кофейня", rule.Pattern)
	assert.Equal(t, "coffee", rule.CategoryID)
	assert.Equal(t, models.NeedTypeWant, rule.NeedType)
}
