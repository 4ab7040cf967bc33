// Package models defines the canonical data model shared by every stage of
// the pipeline: transactions, categorization rules, the category catalog and
// the budgeting entities consumed by the forecast simulator.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType is the coarse kind of a transaction assigned by the classifier.
type TxType string

const (
	TxExpense        TxType = "expense"
	TxIncome         TxType = "income"
	TxTransfer       TxType = "transfer"
	TxRefund         TxType = "refund"
	TxCashWithdrawal TxType = "cash_withdrawal"
	TxFee            TxType = "fee"
)

// NeedType classifies a category as a necessity, a discretionary want,
// a mix, or not yet known.
type NeedType string

const (
	NeedTypeNeed    NeedType = "need"
	NeedTypeWant    NeedType = "want"
	NeedTypeMixed   NeedType = "mixed"
	NeedTypeUnknown NeedType = "unknown"
)

// CategorySource records the provenance of a categorization decision.
// Manual assignments are sticky: no automated pass may overwrite them.
type CategorySource string

const (
	SourceRule   CategorySource = "rule"
	SourceModel  CategorySource = "model"
	SourceManual CategorySource = "manual"
)

// Transaction is the canonical financial event. It is created as a draft by
// the statement parser, mutated in place by the classifier, refund linker and
// categorizer, and only then persisted. The DocumentID is its identity for
// deduplication; the ID never changes across re-imports of the same row.
type Transaction struct {
	ID         string `json:"id" csv:"id"`
	DocumentID string `json:"document_id" csv:"document_id"`
	CardID     string `json:"card_id" csv:"card_id"`
	AccountID  string `json:"account_id,omitempty" csv:"account_id"`
	BankID     string `json:"bank_id,omitempty" csv:"bank_id"`
	CardLast4  string `json:"card_last4,omitempty" csv:"card_last4"`

	Date       time.Time  `json:"date" csv:"-"`
	PostedDate *time.Time `json:"posted_date,omitempty" csv:"-"`

	Amount   decimal.Decimal `json:"amount" csv:"amount"`
	Currency string          `json:"currency" csv:"currency"`

	DescriptionRaw string `json:"description_raw" csv:"description_raw"`
	MerchantRaw    string `json:"merchant_raw" csv:"merchant_raw"`
	MerchantNorm   string `json:"merchant_norm" csv:"merchant_norm"`

	CategoryID         string         `json:"category_id" csv:"category_id"`
	NeedType           NeedType       `json:"need_type" csv:"need_type"`
	CategorySource     CategorySource `json:"category_source,omitempty" csv:"category_source"`
	CategoryConfidence float64        `json:"category_confidence,omitempty" csv:"category_confidence"`

	TxType      TxType `json:"tx_type" csv:"tx_type"`
	IsTransfer  bool   `json:"is_transfer" csv:"is_transfer"`
	IsRecurring bool   `json:"is_recurring" csv:"is_recurring"`

	LinkedTransactionID string `json:"linked_transaction_id,omitempty" csv:"linked_transaction_id"`
	Notes               string `json:"notes,omitempty" csv:"notes"`
}

// NewTransactionID returns a fresh process-assigned transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// IsExpense reports whether money left the tracked instrument.
// The amount sign is the single source of truth for direction.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// AbsAmount returns the magnitude of the transaction amount.
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// HasManualCategory reports whether the category was assigned by the user.
func (t *Transaction) HasManualCategory() bool {
	return t.CategorySource == SourceManual
}
