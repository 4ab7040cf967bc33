package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"vkazakov/fintrack/internal/models"
)

// SQLiteStore is the reference TransactionStore implementation.
type SQLiteStore struct {
	db *sql.DB
}

const transactionsSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	card_id TEXT NOT NULL,
	account_id TEXT NOT NULL DEFAULT '',
	bank_id TEXT NOT NULL DEFAULT '',
	card_last4 TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	posted_date TEXT,
	amount TEXT NOT NULL,
	currency TEXT NOT NULL DEFAULT '',
	description_raw TEXT NOT NULL DEFAULT '',
	merchant_raw TEXT NOT NULL DEFAULT '',
	merchant_norm TEXT NOT NULL DEFAULT '',
	category_id TEXT NOT NULL DEFAULT '',
	need_type TEXT NOT NULL DEFAULT 'unknown',
	category_source TEXT NOT NULL DEFAULT '',
	category_confidence REAL NOT NULL DEFAULT 0,
	tx_type TEXT NOT NULL DEFAULT '',
	is_transfer INTEGER NOT NULL DEFAULT 0,
	is_recurring INTEGER NOT NULL DEFAULT 0,
	linked_transaction_id TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	UNIQUE (card_id, document_id)
);
CREATE INDEX IF NOT EXISTS idx_transactions_card_date ON transactions (card_id, date);
`

// NewSQLiteStore opens (and if necessary initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(transactionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListDocumentIDs returns the set of document ids stored for a card.
func (s *SQLiteStore) ListDocumentIDs(cardID string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT document_id FROM transactions WHERE card_id = ?`, cardID)
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

const transactionColumns = `id, document_id, card_id, account_id, bank_id, card_last4,
	date, posted_date, amount, currency, description_raw, merchant_raw, merchant_norm,
	category_id, need_type, category_source, category_confidence,
	tx_type, is_transfer, is_recurring, linked_transaction_id, notes`

// ListByCard returns all stored transactions for a card, oldest first.
func (s *SQLiteStore) ListByCard(cardID string) ([]models.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT `+transactionColumns+` FROM transactions WHERE card_id = ? ORDER BY date`, cardID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var tx models.Transaction
	var date string
	var postedDate sql.NullString
	var amount string
	var isTransfer, isRecurring int

	err := rows.Scan(&tx.ID, &tx.DocumentID, &tx.CardID, &tx.AccountID, &tx.BankID, &tx.CardLast4,
		&date, &postedDate, &amount, &tx.Currency, &tx.DescriptionRaw, &tx.MerchantRaw, &tx.MerchantNorm,
		&tx.CategoryID, &tx.NeedType, &tx.CategorySource, &tx.CategoryConfidence,
		&tx.TxType, &isTransfer, &isRecurring, &tx.LinkedTransactionID, &tx.Notes)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if postedDate.Valid && postedDate.String != "" {
		posted, err := time.Parse(time.RFC3339, postedDate.String)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("parse stored posted date %q: %w", postedDate.String, err)
		}
		tx.PostedDate = &posted
	}
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	tx.IsTransfer = isTransfer != 0
	tx.IsRecurring = isRecurring != 0
	return tx, nil
}

// BulkInsert stores new transactions inside one transaction so a failed
// import never leaves a partial batch behind.
func (s *SQLiteStore) BulkInsert(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range transactions {
		var postedDate interface{}
		if tx.PostedDate != nil {
			postedDate = tx.PostedDate.Format(time.RFC3339)
		}
		_, err := stmt.Exec(tx.ID, tx.DocumentID, tx.CardID, tx.AccountID, tx.BankID, tx.CardLast4,
			tx.Date.Format(time.RFC3339), postedDate, tx.Amount.String(), tx.Currency,
			tx.DescriptionRaw, tx.MerchantRaw, tx.MerchantNorm,
			tx.CategoryID, string(tx.NeedType), string(tx.CategorySource), tx.CategoryConfidence,
			string(tx.TxType), boolToInt(tx.IsTransfer), boolToInt(tx.IsRecurring),
			tx.LinkedTransactionID, tx.Notes)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", tx.DocumentID, err)
		}
	}

	return dbTx.Commit()
}

// BulkUpdate overwrites statement-derived fields of existing records by
// (card id, document id). Category, need type, category source, confidence
// and notes are deliberately not in the SET list so manual classification
// survives re-import.
func (s *SQLiteStore) BulkUpdate(cardID string, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`UPDATE transactions SET
		date = ?, posted_date = ?, amount = ?, currency = ?,
		description_raw = ?, merchant_raw = ?, merchant_norm = ?, card_last4 = ?,
		tx_type = ?, is_transfer = ?, linked_transaction_id = ?
		WHERE card_id = ? AND document_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for _, tx := range transactions {
		var postedDate interface{}
		if tx.PostedDate != nil {
			postedDate = tx.PostedDate.Format(time.RFC3339)
		}
		_, err := stmt.Exec(tx.Date.Format(time.RFC3339), postedDate, tx.Amount.String(), tx.Currency,
			tx.DescriptionRaw, tx.MerchantRaw, tx.MerchantNorm, tx.CardLast4,
			string(tx.TxType), boolToInt(tx.IsTransfer), tx.LinkedTransactionID,
			cardID, tx.DocumentID)
		if err != nil {
			return fmt.Errorf("update transaction %s: %w", tx.DocumentID, err)
		}
	}

	return dbTx.Commit()
}

// ReplaceAll clears a card's transactions and stores the given set.
func (s *SQLiteStore) ReplaceAll(cardID string, transactions []models.Transaction) error {
	if err := s.Clear(cardID); err != nil {
		return err
	}
	return s.BulkInsert(transactions)
}

// Clear removes every transaction for a card.
func (s *SQLiteStore) Clear(cardID string) error {
	if _, err := s.db.Exec(`DELETE FROM transactions WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
