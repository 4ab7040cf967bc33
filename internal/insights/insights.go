// Package insights derives spending analytics from the stored transaction
// set: small-expense leaks, top merchants, month-over-month category spikes
// and per-budget status.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"vkazakov/fintrack/internal/dateutils"
	"vkazakov/fintrack/internal/models"
	"vkazakov/fintrack/internal/parsererror"
)

// Period selects the analysis window relative to a reference date.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod converts a CLI argument into a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeek, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q (expected week or month)", s)
}

func (p Period) bounds(ref time.Time) (time.Time, time.Time) {
	if p == PeriodWeek {
		return dateutils.StartOfWeek(ref), dateutils.EndOfWeek(ref)
	}
	return dateutils.StartOfMonth(ref), dateutils.EndOfMonth(ref)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func isCountedExpense(tx models.Transaction) bool {
	return tx.TxType == models.TxExpense && !tx.IsTransfer
}

// MerchantTotal is one merchant's aggregate within an insight.
type MerchantTotal struct {
	MerchantNorm string          `json:"merchantNorm"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	CategoryID   string          `json:"categoryId,omitempty"`
}

// Leaks is the small-expense aggregate for a period.
type Leaks struct {
	Period       Period          `json:"period"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
	TopMerchants []MerchantTotal `json:"topMerchants"`
	Threshold    decimal.Decimal `json:"threshold"`
}

// CalculateLeaks sums expenses whose absolute amount is positive and at
// most threshold, excluding transfers, within the period around ref, and
// ranks the five biggest merchants inside that small-expense set.
func CalculateLeaks(transactions []models.Transaction, period Period, threshold decimal.Decimal, ref time.Time) Leaks {
	start, end := period.bounds(ref)

	result := Leaks{Period: period, Total: decimal.Zero, Threshold: threshold}
	byMerchant := make(map[string]*MerchantTotal)
	for _, tx := range transactions {
		amount := tx.AbsAmount()
		if !isCountedExpense(tx) || !inRange(tx.Date, start, end) {
			continue
		}
		if amount.IsZero() || amount.GreaterThan(threshold) {
			continue
		}
		result.Count++
		result.Total = result.Total.Add(amount)
		entry := byMerchant[tx.MerchantNorm]
		if entry == nil {
			entry = &MerchantTotal{MerchantNorm: tx.MerchantNorm, Total: decimal.Zero}
			byMerchant[tx.MerchantNorm] = entry
		}
		entry.Count++
		entry.Total = entry.Total.Add(amount)
	}

	result.TopMerchants = rankMerchants(byMerchant, 5)
	return result
}

// TopMerchants sums absolute expense amounts grouped by normalized
// merchant over the period, sorted descending, truncated to limit.
func TopMerchants(transactions []models.Transaction, period Period, limit int, ref time.Time) []MerchantTotal {
	start, end := period.bounds(ref)

	byMerchant := make(map[string]*MerchantTotal)
	for _, tx := range transactions {
		if !isCountedExpense(tx) || !inRange(tx.Date, start, end) {
			continue
		}
		entry := byMerchant[tx.MerchantNorm]
		if entry == nil {
			entry = &MerchantTotal{MerchantNorm: tx.MerchantNorm, Total: decimal.Zero, CategoryID: tx.CategoryID}
			byMerchant[tx.MerchantNorm] = entry
		}
		entry.Count++
		entry.Total = entry.Total.Add(tx.AbsAmount())
		if entry.CategoryID == "" {
			entry.CategoryID = tx.CategoryID
		}
	}

	return rankMerchants(byMerchant, limit)
}

func rankMerchants(byMerchant map[string]*MerchantTotal, limit int) []MerchantTotal {
	ranked := make([]MerchantTotal, 0, len(byMerchant))
	for _, entry := range byMerchant {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Total.Equal(ranked[j].Total) {
			return ranked[i].Total.GreaterThan(ranked[j].Total)
		}
		return ranked[i].MerchantNorm < ranked[j].MerchantNorm
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Spike is a category whose spend jumped month over month.
type Spike struct {
	CategoryID       string          `json:"categoryId"`
	CurrentTotal     decimal.Decimal `json:"currentTotal"`
	PreviousTotal    decimal.Decimal `json:"previousTotal"`
	PercentageChange float64         `json:"percentageChange"`
}

// SpikeThresholds tunes spike detection. Both conditions must hold: the
// percentage increase must exceed Percentage and the absolute increase
// must exceed AbsoluteFloor, so low-spend categories do not produce noise.
type SpikeThresholds struct {
	Percentage    float64
	AbsoluteFloor decimal.Decimal
}

// DetectSpikes compares this month's per-category expense totals against
// last month's and returns the spiking categories sorted by percentage
// change descending. Categories with no spend last month are skipped.
func DetectSpikes(transactions []models.Transaction, thresholds SpikeThresholds, ref time.Time) []Spike {
	currentStart, currentEnd := PeriodMonth.bounds(ref)
	previousRef := currentStart.AddDate(0, -1, 0)
	previousStart, previousEnd := PeriodMonth.bounds(previousRef)

	current := make(map[string]decimal.Decimal)
	previous := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !isCountedExpense(tx) || tx.CategoryID == "" {
			continue
		}
		switch {
		case inRange(tx.Date, currentStart, currentEnd):
			current[tx.CategoryID] = current[tx.CategoryID].Add(tx.AbsAmount())
		case inRange(tx.Date, previousStart, previousEnd):
			previous[tx.CategoryID] = previous[tx.CategoryID].Add(tx.AbsAmount())
		}
	}

	var spikes []Spike
	for categoryID, currentTotal := range current {
		previousTotal := previous[categoryID]
		if previousTotal.IsZero() {
			continue
		}
		change := currentTotal.Sub(previousTotal)
		pct, _ := change.Div(previousTotal).Mul(decimal.NewFromInt(100)).Float64()
		if pct > thresholds.Percentage && change.GreaterThan(thresholds.AbsoluteFloor) {
			spikes = append(spikes, Spike{
				CategoryID:       categoryID,
				CurrentTotal:     currentTotal,
				PreviousTotal:    previousTotal,
				PercentageChange: pct,
			})
		}
	}

	sort.Slice(spikes, func(i, j int) bool {
		if spikes[i].PercentageChange != spikes[j].PercentageChange {
			return spikes[i].PercentageChange > spikes[j].PercentageChange
		}
		return spikes[i].CategoryID < spikes[j].CategoryID
	})
	return spikes
}

// BudgetStatus is the state of one category budget within its month.
type BudgetStatus struct {
	CategoryID    string          `json:"categoryId"`
	Period        string          `json:"period"`
	Limit         decimal.Decimal `json:"limit"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	Forecast      decimal.Decimal `json:"forecast"`
	IsOverspent   bool            `json:"isOverspent"`
	WillOverspend bool            `json:"willOverspend"`
}

// CalculateBudgetStatus sums the budget category's expenses within the
// budget month and projects the month total linearly from the average
// spend per elapsed day.
func CalculateBudgetStatus(budget models.Budget, transactions []models.Transaction, now time.Time) (BudgetStatus, error) {
	periodStart, err := time.Parse("2006-01", budget.Period)
	if err != nil {
		return BudgetStatus{}, &parsererror.ParseError{Parser: "budget", Field: "period", Value: budget.Period, Err: err}
	}
	periodEnd := dateutils.EndOfMonth(periodStart)

	spent := decimal.Zero
	for _, tx := range transactions {
		if tx.CategoryID != budget.CategoryID || !tx.Amount.IsNegative() {
			continue
		}
		if inRange(tx.Date, periodStart, periodEnd) {
			spent = spent.Add(tx.AbsAmount())
		}
	}

	limit := decimal.NewFromFloat(budget.LimitAmount)
	daysInPeriod := periodEnd.Day()
	daysPassed := now.Day()
	if daysPassed < 1 {
		daysPassed = 1
	}
	if daysPassed > daysInPeriod {
		daysPassed = daysInPeriod
	}
	forecast := spent.Div(decimal.NewFromInt(int64(daysPassed))).Mul(decimal.NewFromInt(int64(daysInPeriod)))

	return BudgetStatus{
		CategoryID:    budget.CategoryID,
		Period:        budget.Period,
		Limit:         limit,
		Spent:         spent,
		Remaining:     limit.Sub(spent),
		Forecast:      forecast,
		IsOverspent:   spent.GreaterThan(limit),
		WillOverspend: forecast.GreaterThan(limit),
	}, nil
}
