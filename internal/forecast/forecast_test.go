package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkazakov/fintrack/internal/models"
)

var testToday = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestParseHorizon(t *testing.T) {
	for _, valid := range []string{"1m", "3m", "6m", "1y"} {
		horizon, err := ParseHorizon(valid)
		require.NoError(t, err)
		assert.Equal(t, Horizon(valid), horizon)
	}

	_, err := ParseHorizon("2w")
	assert.Error(t, err)
}

func TestSimulateSeriesShape(t *testing.T) {
	result := Simulate(Input{CardBalance: 1000}, Horizon1Month, testToday)

	// 2024-03-15 through 2024-04-15 inclusive.
	require.Len(t, result.Points, 32)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), result.Points[0].Date)
	assert.Equal(t, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), result.Points[31].Date)
	assert.Equal(t, 1000.0, result.Points[31].CardBalance)
	assert.Zero(t, result.TotalIncome)
	assert.Zero(t, result.TotalExpenses)
}

func TestSimulateMonthlyExpenseOnFirstDay(t *testing.T) {
	input := Input{
		CardBalance: 5000,
		RecurringExpense: []models.RecurringExpense{
			{ID: "rent", Amount: 1000, Period: models.PeriodMonthly, Source: models.CardFunds()},
		},
	}

	result := Simulate(input, Horizon1Month, testToday)

	assert.Equal(t, 1000.0, result.TotalExpenses, "april 1st falls inside the horizon exactly once")
	final := result.Points[len(result.Points)-1]
	assert.Equal(t, 4000.0, final.CardBalance)
}

func TestSimulateMonthlyOnDay(t *testing.T) {
	input := Input{
		CardBalance: 0,
		RecurringIncome: []models.RecurringIncome{
			{ID: "salary", Amount: 3000, Period: models.PeriodMonthlyOnDay, DayOfMonth: 20, Destination: models.CardFunds()},
		},
	}

	result := Simulate(input, Horizon3Months, testToday)

	// March 20, April 20, May 20 and June 15 is past... horizon end is
	// June 15, so three paydays fall inside.
	assert.Equal(t, 9000.0, result.TotalIncome)
	assert.Equal(t, 9000.0, result.Points[len(result.Points)-1].CardBalance)
}

func TestSimulateWeekly(t *testing.T) {
	input := Input{
		RecurringExpense: []models.RecurringExpense{
			{ID: "gym", Amount: 100, Period: models.PeriodWeekly, DayOfWeek: time.Monday, Source: models.CardFunds()},
		},
	}

	result := Simulate(input, Horizon1Month, testToday)

	mondays := 0
	for _, point := range result.Points {
		if point.Date.Weekday() == time.Monday {
			mondays++
		}
	}
	assert.Equal(t, float64(mondays)*100, result.TotalExpenses)
}

func TestSimulatePlannedExpenseFromSavings(t *testing.T) {
	input := Input{
		CardBalance: 1000,
		SavingsAccounts: []models.SavingsAccount{
			{ID: "sav-1", Balance: 10000, AnnualInterestRate: 0},
		},
		PlannedExpenses: []models.PlannedExpense{
			{ID: "vacation", Amount: 2500, Date: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), Source: models.SavingsFunds("sav-1")},
		},
	}

	result := Simulate(input, Horizon1Month, testToday)

	final := result.Points[len(result.Points)-1]
	assert.Equal(t, 1000.0, final.CardBalance, "card is untouched")
	assert.Equal(t, 7500.0, final.SavingsBalance)
	assert.Equal(t, 2500.0, result.TotalExpenses)
}

func TestSimulateInterestAccrues(t *testing.T) {
	input := Input{
		SavingsAccounts: []models.SavingsAccount{
			{ID: "sav-1", Balance: 100000, AnnualInterestRate: 12},
		},
	}

	result := Simulate(input, Horizon1Year, testToday)

	final := result.Points[len(result.Points)-1]
	assert.Greater(t, final.SavingsBalance, 100000.0)
	// Daily compounding at 12% over a year lands a bit above the simple
	// 12% and below 13%.
	assert.InDelta(t, 112750, final.SavingsBalance, 1000)
	assert.InDelta(t, final.SavingsBalance-100000, result.TotalInterest, 1e-6)
}

func TestSimulateConservation(t *testing.T) {
	input := Input{
		CardBalance: 5000,
		SavingsAccounts: []models.SavingsAccount{
			{ID: "sav-1", Balance: 20000, AnnualInterestRate: 8},
		},
		RecurringIncome: []models.RecurringIncome{
			{ID: "salary", Amount: 3000, Period: models.PeriodMonthlyOnDay, DayOfMonth: 5, Destination: models.CardFunds()},
			{ID: "topup", Amount: 500, Period: models.PeriodMonthly, Destination: models.SavingsFunds("sav-1")},
		},
		RecurringExpense: []models.RecurringExpense{
			{ID: "rent", Amount: 1500, Period: models.PeriodMonthly, Source: models.CardFunds()},
			{ID: "gym", Amount: 50, Period: models.PeriodWeekly, DayOfWeek: time.Wednesday, Source: models.CardFunds()},
		},
		PlannedExpenses: []models.PlannedExpense{
			{ID: "gift", Amount: 700, Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Source: models.CardFunds()},
		},
	}

	result := Simulate(input, Horizon6Months, testToday)
	require.NotEmpty(t, result.Points)

	final := result.Points[len(result.Points)-1]
	initial := 5000.0 + 20000.0
	expected := initial + result.TotalIncome - result.TotalExpenses + result.TotalInterest
	assert.True(t, math.Abs(final.TotalBalance-expected) < 1e-6,
		"final %f, expected %f", final.TotalBalance, expected)
}
