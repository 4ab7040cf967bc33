// Package export writes transactions to CSV files for use in spreadsheets
// and other tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

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

// row is the flat CSV shape of a transaction. Dates are rendered as
// ISO days so the output sorts correctly as text.
type row struct {
	ID                  string `csv:"id"`
	DocumentID          string `csv:"document_id"`
	CardID              string `csv:"card_id"`
	CardLast4           string `csv:"card_last4"`
	Date                string `csv:"date"`
	Amount              string `csv:"amount"`
	Currency            string `csv:"currency"`
	DescriptionRaw      string `csv:"description"`
	MerchantNorm        string `csv:"merchant"`
	CategoryID          string `csv:"category_id"`
	NeedType            string `csv:"need_type"`
	CategorySource      string `csv:"category_source"`
	TxType              string `csv:"tx_type"`
	IsTransfer          bool   `csv:"is_transfer"`
	LinkedTransactionID string `csv:"linked_transaction_id"`
	Notes               string `csv:"notes"`
}

func toRow(tx models.Transaction) row {
	return row{
		ID:                  tx.ID,
		DocumentID:          tx.DocumentID,
		CardID:              tx.CardID,
		CardLast4:           tx.CardLast4,
		Date:                tx.Date.Format("2006-01-02"),
		Amount:              tx.Amount.StringFixed(2),
		Currency:            tx.Currency,
		DescriptionRaw:      tx.DescriptionRaw,
		MerchantNorm:        tx.MerchantNorm,
		CategoryID:          tx.CategoryID,
		NeedType:            string(tx.NeedType),
		CategorySource:      string(tx.CategorySource),
		TxType:              string(tx.TxType),
		IsTransfer:          tx.IsTransfer,
		LinkedTransactionID: tx.LinkedTransactionID,
		Notes:               tx.Notes,
	}
}

// WriteTransactions writes transactions as CSV to w with the given
// delimiter.
func WriteTransactions(w io.Writer, transactions []models.Transaction, delimiter rune) error {
	rows := make([]row, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, toRow(tx))
	}

	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// WriteTransactionsFile writes transactions to a CSV file, creating parent
// directories as needed.
func WriteTransactionsFile(path string, transactions []models.Transaction, delimiter rune) error {
	log.Info("Writing transactions to CSV file",
		logging.Field{Key: "file", Value: path},
		logging.Field{Key: "count", Value: len(transactions)})

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			log.WithError(err).Error("Failed to create directory")
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	return WriteTransactions(file, transactions, delimiter)
}
