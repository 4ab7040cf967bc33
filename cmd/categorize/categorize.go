// Package categorize handles categorization commands over stored
// transactions.
package categorize

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"vkazakov/fintrack/cmd/root"
	"vkazakov/fintrack/internal/aiclassify"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
	"vkazakov/fintrack/internal/rules"
	"vkazakov/fintrack/internal/store"
)

var (
	useAI       bool
	documentID  string
	setCategory string
	setNeedType string
	makeRule    bool
)

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Re-run categorization over stored transactions",
	Long: `Re-apply the rule engine to a card's stored transactions. Manual
assignments are never overwritten. With --document and --set-category a
single transaction is categorized manually, optionally deriving a new rule
from it with --make-rule. With --ai, transactions the rules left in the
fallback category are sent to the external classifier.`,
	Run: categorizeFunc,
}

func init() {
	Cmd.Flags().BoolVar(&useAI, "ai", false, "Classify uncategorized transactions with the external model")
	Cmd.Flags().StringVar(&documentID, "document", "", "Document id of a single transaction to categorize manually")
	Cmd.Flags().StringVar(&setCategory, "set-category", "", "Category id to assign manually")
	Cmd.Flags().StringVar(&setNeedType, "set-need", "", "Need type to assign manually (need, want, mixed)")
	Cmd.Flags().BoolVar(&makeRule, "make-rule", false, "Derive a persistent rule from the manual assignment")
}

func categorizeFunc(cmd *cobra.Command, args []string) {
	engine, ruleStore, err := root.LoadRuleEngine()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load rules")
	}

	txStore, err := root.OpenTransactionStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open transaction store")
	}
	defer txStore.Close()

	cardID := root.SharedFlags.Card
	transactions, err := txStore.ListByCard(cardID)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to list transactions")
	}
	if len(transactions) == 0 {
		root.Log.Info("No stored transactions for card",
			logging.Field{Key: "card", Value: cardID})
		return
	}

	if documentID != "" {
		categorizeManually(transactions, ruleStore)
	}

	categorized := engine.ApplyToBatch(transactions)
	root.Log.Info("Applied rules",
		logging.Field{Key: "categorized", Value: categorized},
		logging.Field{Key: "total", Value: len(transactions)})

	if useAI {
		classifyWithModel(transactions)
	}

	if err := txStore.ReplaceAll(cardID, transactions); err != nil {
		root.Log.WithError(err).Fatal("Failed to store categorized transactions")
	}
	if err := ruleStore.Save(); err != nil {
		root.Log.WithError(err).Fatal("Failed to save rules")
	}
}

func categorizeManually(transactions []models.Transaction, ruleStore *store.RuleStore) {
	if setCategory == "" {
		root.Log.Fatal("--document requires --set-category")
	}

	needType := models.NeedTypeUnknown
	switch models.NeedType(setNeedType) {
	case models.NeedTypeNeed, models.NeedTypeWant, models.NeedTypeMixed:
		needType = models.NeedType(setNeedType)
	}

	for i := range transactions {
		if transactions[i].DocumentID != documentID {
			continue
		}
		transactions[i].CategoryID = setCategory
		transactions[i].NeedType = needType
		transactions[i].CategorySource = models.SourceManual
		transactions[i].CategoryConfidence = 1.0

		if makeRule {
			rule := rules.FromTransaction(&transactions[i], setCategory, needType, ruleStore.List())
			ruleStore.Upsert(rule)
			root.Log.Info("Derived rule from manual categorization",
				logging.Field{Key: "ruleId", Value: rule.ID},
				logging.Field{Key: "pattern", Value: rule.Pattern})
		}
		return
	}
	root.Log.Fatal("Transaction not found",
		logging.Field{Key: "document", Value: documentID})
}

func classifyWithModel(transactions []models.Transaction) {
	cfg := root.Cfg
	if !cfg.AI.Enabled {
		root.Log.Warn("AI classification requested but disabled in configuration")
		return
	}

	categories, err := store.NewCategoryStore("").LoadCategories()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load categories")
	}

	var unresolved []models.Transaction
	indexes := make([]int, 0, len(transactions))
	for i, tx := range transactions {
		if tx.CategoryID == models.CategoryOther && tx.CategorySource == "" && !tx.IsTransfer {
			unresolved = append(unresolved, tx)
			indexes = append(indexes, i)
		}
	}
	if len(unresolved) == 0 {
		return
	}

	classifier := aiclassify.NewGeminiClassifier(cfg.AI.APIKey, cfg.AI.Model, categories)
	defer classifier.Close()

	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	applied, err := aiclassify.ApplySuggestions(context.Background(), classifier, unresolved, cfg.AI.ConfidenceThreshold, timeout)
	if err != nil {
		root.Log.WithError(err).Warn("Model classification failed")
		return
	}
	for j, i := range indexes {
		transactions[i] = unresolved[j]
	}
	root.Log.Info("Applied model suggestions",
		logging.Field{Key: "applied", Value: applied},
		logging.Field{Key: "candidates", Value: len(unresolved)})
}
