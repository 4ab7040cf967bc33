package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
)

// BudgetConfig is the budgeting configuration consumed by the forecast
// simulator and the budget-status calculation.
type BudgetConfig struct {
	CardBalance      float64                   `yaml:"card_balance"`
	SavingsAccounts  []models.SavingsAccount   `yaml:"savings_accounts"`
	RecurringIncome  []models.RecurringIncome  `yaml:"recurring_income"`
	RecurringExpense []models.RecurringExpense `yaml:"recurring_expenses"`
	PlannedExpenses  []models.PlannedExpense   `yaml:"planned_expenses"`
	Budgets          []models.Budget           `yaml:"budgets"`
}

// BudgetStore loads budgeting configuration from a YAML file.
type BudgetStore struct {
	BudgetFile string
}

// NewBudgetStore creates a budget store backed by the given YAML file.
func NewBudgetStore(budgetFile string) *BudgetStore {
	if budgetFile == "" {
		budgetFile = "budget.yaml"
	}
	return &BudgetStore{BudgetFile: budgetFile}
}

// Load reads the budget file. A missing file yields an empty configuration.
func (s *BudgetStore) Load() (BudgetConfig, error) {
	filePath, err := findConfigFile(s.BudgetFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Budget file not found, using empty configuration",
				logging.Field{Key: "file", Value: s.BudgetFile})
			return BudgetConfig{}, nil
		}
		return BudgetConfig{}, fmt.Errorf("error resolving budget file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return BudgetConfig{}, fmt.Errorf("error reading budget file: %w", err)
	}

	var config BudgetConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return BudgetConfig{}, fmt.Errorf("error parsing budget file: %w", err)
	}

	log.Debug("Loaded budget configuration",
		logging.Field{Key: "file", Value: filePath},
		logging.Field{Key: "savingsAccounts", Value: len(config.SavingsAccounts)},
		logging.Field{Key: "budgets", Value: len(config.Budgets)})
	return config, nil
}
