// Package classify assigns the coarse transaction type from description
// keywords and amount sign, detects internal transfers that carry no
// distinguishing keyword by pairing opposite-signed amounts, and links
// refunds to the expenses they reverse.
package classify

import (
	"strings"

	"github.com/shopspring/decimal"

	"vkazakov/fintrack/internal/dateutils"
	"vkazakov/fintrack/internal/models"
)

// amountEpsilon is the currency tolerance for amount equality.
var amountEpsilon = decimal.NewFromFloat(0.01)

var transferKeywords = []string{
	"перевод между счетами",
	"пополнение счета",
	"пополнение карты",
	"внутренний перевод",
	"transfer between accounts",
	"account transfer",
	"internal transfer",
	"себе",
	"на свой счет",
	"на свою карту",
}

var refundKeywords = []string{
	"возврат",
	"отмена операции",
	"refund",
	"chargeback",
	"reversal",
	"cancellation",
}

var sbpKeywords = []string{
	"сбп",
	"sbp",
	"система быстрых платежей",
}

var cashKeywords = []string{
	"снятие наличных",
	"cash withdrawal",
	"retrait",
	"atm",
}

var feeKeywords = []string{
	"комиссия",
	"fee",
	"commission",
}

func searchText(tx *models.Transaction) string {
	return strings.ToLower(tx.DescriptionRaw + " " + tx.MerchantRaw)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// IsTransfer reports whether the transaction text names an internal
// transfer. Incoming fast-payment (SBP) credits count as transfers too.
func IsTransfer(tx *models.Transaction) bool {
	text := searchText(tx)
	if containsAny(text, transferKeywords) {
		return true
	}
	return containsAny(text, sbpKeywords) && tx.Amount.IsPositive()
}

// IsRefund reports whether the transaction text names a reversal. Refunds
// are only valid on incoming amounts; a negative "refund" is a charge.
func IsRefund(tx *models.Transaction) bool {
	if !tx.Amount.IsPositive() {
		return false
	}
	return containsAny(searchText(tx), refundKeywords)
}

// TypeOf assigns the coarse transaction type. Priority: refund, transfer,
// cash withdrawal, fee, then expense or income by amount sign.
func TypeOf(tx *models.Transaction) models.TxType {
	if IsRefund(tx) {
		return models.TxRefund
	}
	if IsTransfer(tx) {
		return models.TxTransfer
	}

	text := searchText(tx)
	if containsAny(text, cashKeywords) {
		return models.TxCashWithdrawal
	}
	if containsAny(text, feeKeywords) {
		return models.TxFee
	}

	if tx.Amount.IsNegative() {
		return models.TxExpense
	}
	return models.TxIncome
}

// Apply sets TxType and IsTransfer on every transaction in the batch from
// keywords alone, then runs the opposite-amount pairing pass.
func Apply(batch []models.Transaction) {
	for i := range batch {
		batch[i].TxType = TypeOf(&batch[i])
		batch[i].IsTransfer = batch[i].TxType == models.TxTransfer
	}
	pairTransfers(batch)
}

// pairTransfers reclassifies unexplained expense/income pairs as transfers
// when another transaction has the exact opposite amount within one calendar
// day. This catches internal transfers with no distinguishing keyword.
func pairTransfers(batch []models.Transaction) {
	for i := range batch {
		tx := &batch[i]
		if tx.TxType != models.TxExpense && tx.TxType != models.TxIncome {
			continue
		}
		for j := range batch {
			if i == j {
				continue
			}
			other := &batch[j]
			if other.TxType != models.TxExpense && other.TxType != models.TxIncome {
				continue
			}
			if !withinOneDay(tx, other) {
				continue
			}
			if other.Amount.Add(tx.Amount).Abs().LessThan(amountEpsilon) {
				tx.TxType = models.TxTransfer
				tx.IsTransfer = true
				other.TxType = models.TxTransfer
				other.IsTransfer = true
				break
			}
		}
	}
}

func withinOneDay(a, b *models.Transaction) bool {
	da := dateutils.Midnight(a.Date)
	db := dateutils.Midnight(b.Date)
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff.Hours() <= 24
}

// LinkRefunds pairs refund records with the expense they reverse. A match
// requires amount equality within the currency epsilon and similar merchant
// names; each expense can be claimed by at most one refund, and links are
// set reciprocally on both records.
func LinkRefunds(batch []models.Transaction) {
	var expenses []*models.Transaction
	var refunds []*models.Transaction
	for i := range batch {
		tx := &batch[i]
		switch {
		case tx.TxType == models.TxExpense && tx.Amount.IsNegative() && tx.LinkedTransactionID == "":
			expenses = append(expenses, tx)
		case tx.TxType == models.TxRefund:
			refunds = append(refunds, tx)
		}
	}

	for _, refund := range refunds {
		refundAmount := refund.Amount.Abs()
		refundName := strings.ToLower(refund.MerchantRaw)

		for _, expense := range expenses {
			if expense.LinkedTransactionID != "" {
				continue
			}
			if refundAmount.Sub(expense.Amount.Abs()).Abs().GreaterThanOrEqual(amountEpsilon) {
				continue
			}
			if !namesSimilar(strings.ToLower(expense.MerchantRaw), refundName) {
				continue
			}
			refund.LinkedTransactionID = expense.ID
			expense.LinkedTransactionID = refund.ID
			break
		}
	}
}

// namesSimilar: one name contains the other, or the expense name has a word
// longer than three characters that appears in the refund name.
func namesSimilar(expenseName, refundName string) bool {
	if expenseName == "" || refundName == "" {
		return false
	}
	if strings.Contains(expenseName, refundName) || strings.Contains(refundName, expenseName) {
		return true
	}
	for _, word := range strings.Fields(expenseName) {
		if len([]rune(word)) > 3 && strings.Contains(refundName, word) {
			return true
		}
	}
	return false
}
