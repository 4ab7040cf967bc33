// Package pipeline orchestrates statement ingestion: parse the raw file,
// run rule categorization over the batch, then reconcile with the store so
// re-importing an overlapping statement never duplicates records.
package pipeline

import (
	"fmt"
	"sync"

	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/models"
	"vkazakov/fintrack/internal/parsererror"
	"vkazakov/fintrack/internal/rules"
	"vkazakov/fintrack/internal/statement"
	"vkazakov/fintrack/internal/store"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// ImportResult reports the outcome of one statement import.
type ImportResult struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Updated int `json:"updated"`
}

// Importer runs statement imports. Imports for the same card are
// serialized so concurrent uploads cannot race on the dedup check.
type Importer struct {
	Store  store.TransactionStore
	Engine *rules.Engine

	mu    sync.Mutex
	cards map[string]*sync.Mutex
}

// NewImporter creates an importer writing to the given store and
// categorizing with the given rule engine.
func NewImporter(txStore store.TransactionStore, engine *rules.Engine) *Importer {
	return &Importer{
		Store:  txStore,
		Engine: engine,
		cards:  make(map[string]*sync.Mutex),
	}
}

func (imp *Importer) cardLock(cardID string) *sync.Mutex {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	lock, ok := imp.cards[cardID]
	if !ok {
		lock = &sync.Mutex{}
		imp.cards[cardID] = lock
	}
	return lock
}

// ImportStatement parses raw statement content for a card, categorizes the
// batch and upserts it. Existing records (matched by document id) get their
// statement-derived fields refreshed; manual classification is preserved.
func (imp *Importer) ImportStatement(content []byte, cardID string) (ImportResult, error) {
	lock := imp.cardLock(cardID)
	lock.Lock()
	defer lock.Unlock()

	batch, err := statement.Parse(content, cardID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse statement: %w", err)
	}
	if len(batch) == 0 {
		log.Info("Statement contained no transactions",
			logging.Field{Key: "cardId", Value: cardID})
		return ImportResult{}, nil
	}

	if imp.Engine != nil {
		categorized := imp.Engine.ApplyToBatch(batch)
		log.Debug("Categorized batch",
			logging.Field{Key: "matched", Value: categorized},
			logging.Field{Key: "total", Value: len(batch)})
	}

	existing, err := imp.Store.ListDocumentIDs(cardID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list existing documents: %w", err)
	}

	var inserts, updates []models.Transaction
	for _, tx := range batch {
		if existing[tx.DocumentID] {
			updates = append(updates, tx)
		} else {
			inserts = append(inserts, tx)
		}
	}

	// The whole batch is split before anything is written, so a parse or
	// classification failure never leaves partial data behind.
	if err := imp.Store.BulkInsert(inserts); err != nil {
		return ImportResult{}, &parsererror.StoreError{Op: "insert", Err: err}
	}
	if err := imp.Store.BulkUpdate(cardID, updates); err != nil {
		return ImportResult{}, &parsererror.StoreError{Op: "update", Err: err}
	}

	result := ImportResult{Total: len(batch), New: len(inserts), Updated: len(updates)}
	log.Info("Imported statement",
		logging.Field{Key: "cardId", Value: cardID},
		logging.Field{Key: "total", Value: result.Total},
		logging.Field{Key: "new", Value: result.New},
		logging.Field{Key: "updated", Value: result.Updated})
	return result, nil
}

// ReplaceStatement parses raw content and replaces the card's stored
// transactions with the result, discarding previous classification.
func (imp *Importer) ReplaceStatement(content []byte, cardID string) (ImportResult, error) {
	lock := imp.cardLock(cardID)
	lock.Lock()
	defer lock.Unlock()

	batch, err := statement.Parse(content, cardID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse statement: %w", err)
	}
	if imp.Engine != nil {
		imp.Engine.ApplyToBatch(batch)
	}
	if err := imp.Store.ReplaceAll(cardID, batch); err != nil {
		return ImportResult{}, &parsererror.StoreError{Op: "replace", Err: err}
	}
	return ImportResult{Total: len(batch), New: len(batch)}, nil
}
