// Package currencyutils provides amount parsing and formatting shared by
// every ingestion path.
package currencyutils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount interprets a raw amount cell. It trims the input, rejects
// empty strings and a bare "-", strips internal whitespace, converts comma
// decimal separators to dots and parses the result. The ok return
// distinguishes "no amount" from "amount is zero"; callers skip the row on
// no-match instead of failing the batch.
func ParseAmount(amountStr string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(amountStr)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, false
	}

	cleaned = strings.Join(strings.Fields(cleaned), "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}

	return amount, true
}

// FormatAmount renders an amount with two decimal places and a currency
// code, e.g. "RUB 1234.56". Display-only; no rounding happens upstream.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}
