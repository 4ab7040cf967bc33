// Package forecast projects daily balances over a horizon from current
// balances, recurring income/expense rules, planned one-off expenses and
// savings interest. The simulation is deterministic and does no I/O;
// arithmetic is floating point, rounding is left to display layers.
package forecast

import (
	"fmt"
	"time"

	"vkazakov/fintrack/internal/dateutils"
	"vkazakov/fintrack/internal/models"
)

// Horizon selects the projection length.
type Horizon string

const (
	Horizon1Month  Horizon = "1m"
	Horizon3Months Horizon = "3m"
	Horizon6Months Horizon = "6m"
	Horizon1Year   Horizon = "1y"
)

// ParseHorizon converts a CLI argument into a Horizon.
func ParseHorizon(s string) (Horizon, error) {
	switch Horizon(s) {
	case Horizon1Month, Horizon3Months, Horizon6Months, Horizon1Year:
		return Horizon(s), nil
	}
	return "", fmt.Errorf("unknown horizon %q (expected 1m, 3m, 6m or 1y)", s)
}

func (h Horizon) months() int {
	switch h {
	case Horizon3Months:
		return 3
	case Horizon6Months:
		return 6
	case Horizon1Year:
		return 12
	default:
		return 1
	}
}

// Input is the budgeting configuration the simulator consumes.
type Input struct {
	CardBalance      float64                   `json:"cardBalance"`
	SavingsAccounts  []models.SavingsAccount   `json:"savingsAccounts"`
	RecurringIncome  []models.RecurringIncome  `json:"recurringIncome"`
	RecurringExpense []models.RecurringExpense `json:"recurringExpense"`
	PlannedExpenses  []models.PlannedExpense   `json:"plannedExpenses"`
}

// Point is one day of the projected series.
type Point struct {
	Date           time.Time `json:"date"`
	CardBalance    float64   `json:"cardBalance"`
	SavingsBalance float64   `json:"savingsBalance"`
	TotalBalance   float64   `json:"totalBalance"`
}

// Result is the full daily series plus running totals over the horizon.
type Result struct {
	Points        []Point `json:"points"`
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	TotalInterest float64 `json:"totalInterest"`
}

// Simulate steps one calendar day at a time from today (midnight) to the
// horizon end date inclusive. Each day: accrue savings interest, apply
// matching recurring income and expenses, apply planned expenses falling
// on that day, then record a point.
func Simulate(input Input, horizon Horizon, today time.Time) Result {
	start := dateutils.Midnight(today)
	end := start.AddDate(0, horizon.months(), 0)

	cardBalance := input.CardBalance
	// Accounts are kept in input order so the accumulation order, and with
	// it the exact float result, is stable across runs.
	accounts := make([]models.SavingsAccount, len(input.SavingsAccounts))
	copy(accounts, input.SavingsAccounts)
	index := make(map[string]int, len(accounts))
	for i, account := range accounts {
		index[account.ID] = i
	}

	var result Result
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for i := range accounts {
			interest := accounts[i].Balance * (accounts[i].AnnualInterestRate / 100) / 365
			accounts[i].Balance += interest
			result.TotalInterest += interest
		}

		for _, income := range input.RecurringIncome {
			if !scheduleMatches(income.Period, income.DayOfMonth, income.DayOfWeek, day) {
				continue
			}
			result.TotalIncome += income.Amount
			credit(&cardBalance, accounts, index, income.Destination, income.Amount)
		}

		for _, expense := range input.RecurringExpense {
			if !scheduleMatches(expense.Period, expense.DayOfMonth, expense.DayOfWeek, day) {
				continue
			}
			result.TotalExpenses += expense.Amount
			credit(&cardBalance, accounts, index, expense.Source, -expense.Amount)
		}

		for _, planned := range input.PlannedExpenses {
			if !dateutils.SameDay(planned.Date, day) {
				continue
			}
			result.TotalExpenses += planned.Amount
			credit(&cardBalance, accounts, index, planned.Source, -planned.Amount)
		}

		savingsTotal := 0.0
		for i := range accounts {
			savingsTotal += accounts[i].Balance
		}
		result.Points = append(result.Points, Point{
			Date:           day,
			CardBalance:    cardBalance,
			SavingsBalance: savingsTotal,
			TotalBalance:   cardBalance + savingsTotal,
		})
	}
	return result
}

func scheduleMatches(period models.RecurrencePeriod, dayOfMonth int, dayOfWeek time.Weekday, day time.Time) bool {
	switch period {
	case models.PeriodWeekly:
		return day.Weekday() == dayOfWeek
	case models.PeriodMonthly:
		return day.Day() == 1
	case models.PeriodMonthlyOnDay:
		return day.Day() == dayOfMonth
	}
	return false
}

func credit(cardBalance *float64, accounts []models.SavingsAccount, index map[string]int, funds models.FundsRef, amount float64) {
	switch funds.Kind {
	case models.FundsSavings:
		if i, ok := index[funds.SavingsAccountID]; ok {
			accounts[i].Balance += amount
			return
		}
		// Unknown savings account: fall through to the card so money is
		// never silently dropped from the projection.
		*cardBalance += amount
	default:
		*cardBalance += amount
	}
}
