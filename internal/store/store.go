// Package store provides persistence for rules, the category catalog and
// transactions. Rules and categories live in YAML files resolved the same
// way as other config; transactions go to SQLite (or the in-memory store in
// tests). The pipeline only depends on the TransactionStore interface.
package store

import (
	"os"
	"path/filepath"

	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// TransactionStore is the contract the dedup/upsert engine needs from
// persistence: per-card document-id listing, bulk insert, bulk update by
// document id, and replace/clear. Any key-addressable store satisfies it.
type TransactionStore interface {
	// ListDocumentIDs returns the set of document ids already stored for a card.
	ListDocumentIDs(cardID string) (map[string]bool, error)

	// ListByCard returns all stored transactions for a card.
	ListByCard(cardID string) ([]models.Transaction, error)

	// BulkInsert stores new transactions as-is.
	BulkInsert(transactions []models.Transaction) error

	// BulkUpdate overwrites statement-derived fields of existing records,
	// matched by (card id, document id). Classification fields not derivable
	// from the statement (category, need type, category source, notes)
	// must survive untouched.
	BulkUpdate(cardID string, transactions []models.Transaction) error

	// ReplaceAll clears a card's transactions and stores the given set.
	ReplaceAll(cardID string, transactions []models.Transaction) error

	// Clear removes every transaction for a card.
	Clear(cardID string) error
}

// findConfigFile looks for a configuration file in standard locations:
// the current directory, ./config/, then ~/.config/fintrack/.
func findConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "fintrack", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}
