package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkazakov/fintrack/internal/models"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func expense(merchant, category string, amount float64, date time.Time) models.Transaction {
	return models.Transaction{
		ID:           models.NewTransactionID(),
		MerchantNorm: merchant,
		CategoryID:   category,
		Amount:       decimal.NewFromFloat(-amount),
		Date:         date,
		TxType:       models.TxExpense,
	}
}

func TestCalculateLeaks(t *testing.T) {
	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	transactions := []models.Transaction{
		expense("Кофейня", "coffee", 300, march(3)),
		expense("Кофейня", "coffee", 250, march(10)),
		expense("Самокат", "food-home", 700, march(12)),
		expense("Ашан", "food-home", 5400, march(5)), // above threshold
		expense("Кофейня", "coffee", 300, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)), // outside period
	}
	transfer := expense("СБП", "", 100, march(4))
	transfer.IsTransfer = true
	transfer.TxType = models.TxTransfer
	transactions = append(transactions, transfer)

	leaks := CalculateLeaks(transactions, PeriodMonth, decimal.NewFromInt(800), now)

	assert.Equal(t, 3, leaks.Count)
	assert.True(t, decimal.NewFromInt(1250).Equal(leaks.Total), "got %s", leaks.Total)
	require.NotEmpty(t, leaks.TopMerchants)
	assert.Equal(t, "Самокат", leaks.TopMerchants[0].MerchantNorm)
	assert.True(t, decimal.NewFromInt(700).Equal(leaks.TopMerchants[0].Total))
	assert.Equal(t, "Кофейня", leaks.TopMerchants[1].MerchantNorm)
	assert.Equal(t, 2, leaks.TopMerchants[1].Count)
}

func TestCalculateLeaksWeekPeriod(t *testing.T) {
	// now is Friday 2024-03-15; the week runs Mar 11 (Mon) to Mar 17 (Sun).
	transactions := []models.Transaction{
		expense("Кофейня", "coffee", 200, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)),
		expense("Кофейня", "coffee", 200, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
	}

	leaks := CalculateLeaks(transactions, PeriodWeek, decimal.NewFromInt(800), now)
	assert.Equal(t, 1, leaks.Count)
}

func TestTopMerchants(t *testing.T) {
	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	transactions := []models.Transaction{
		expense("Ашан", "food-home", 5400, march(5)),
		expense("Ашан", "food-home", 2600, march(12)),
		expense("Кофейня", "coffee", 300, march(3)),
		expense("Озон", "shopping", 1500, march(8)),
	}

	merchants := TopMerchants(transactions, PeriodMonth, 2, now)

	require.Len(t, merchants, 2)
	assert.Equal(t, "Ашан", merchants[0].MerchantNorm)
	assert.True(t, decimal.NewFromInt(8000).Equal(merchants[0].Total))
	assert.Equal(t, 2, merchants[0].Count)
	assert.Equal(t, "food-home", merchants[0].CategoryID)
	assert.Equal(t, "Озон", merchants[1].MerchantNorm)
}

func TestDetectSpikes(t *testing.T) {
	feb := func(day int) time.Time { return time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC) }
	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	transactions := []models.Transaction{
		// delivery: 10000 -> 16000, +60% and +6000 abs: a spike.
		expense("Яндекс Еда", "delivery", 10000, feb(10)),
		expense("Яндекс Еда", "delivery", 16000, march(10)),
		// coffee: 1000 -> 2000, +100% but only +1000 abs: no spike.
		expense("Кофейня", "coffee", 1000, feb(12)),
		expense("Кофейня", "coffee", 2000, march(12)),
		// food-home: 20000 -> 24000, +4000 abs and +20%: no spike.
		expense("Ашан", "food-home", 20000, feb(15)),
		expense("Ашан", "food-home", 24000, march(15)),
		// shopping: nothing last month: skipped entirely.
		expense("Озон", "shopping", 30000, march(8)),
	}

	spikes := DetectSpikes(transactions, SpikeThresholds{
		Percentage:    25,
		AbsoluteFloor: decimal.NewFromInt(5000),
	}, now)

	require.Len(t, spikes, 1)
	assert.Equal(t, "delivery", spikes[0].CategoryID)
	assert.InDelta(t, 60.0, spikes[0].PercentageChange, 0.01)
	assert.True(t, decimal.NewFromInt(16000).Equal(spikes[0].CurrentTotal))
	assert.True(t, decimal.NewFromInt(10000).Equal(spikes[0].PreviousTotal))
}

func TestCalculateBudgetStatus(t *testing.T) {
	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	budget := models.Budget{ID: "b1", Period: "2024-03", CategoryID: "food-home", LimitAmount: 20000}
	transactions := []models.Transaction{
		expense("Ашан", "food-home", 6000, march(5)),
		expense("Ашан", "food-home", 3000, march(10)),
		expense("Кофейня", "coffee", 500, march(10)),                                  // other category
		expense("Ашан", "food-home", 4000, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)), // other month
	}

	status, err := CalculateBudgetStatus(budget, transactions, now)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(9000).Equal(status.Spent), "got %s", status.Spent)
	assert.True(t, decimal.NewFromInt(11000).Equal(status.Remaining))
	// 9000 over 15 elapsed days, projected over 31 days.
	assert.True(t, decimal.NewFromInt(18600).Equal(status.Forecast), "got %s", status.Forecast)
	assert.False(t, status.IsOverspent)
	assert.False(t, status.WillOverspend)
}

func TestCalculateBudgetStatusOverspend(t *testing.T) {
	budget := models.Budget{ID: "b1", Period: "2024-03", CategoryID: "coffee", LimitAmount: 1000}
	transactions := []models.Transaction{
		expense("Кофейня", "coffee", 1500, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
	}

	status, err := CalculateBudgetStatus(budget, transactions, now)
	require.NoError(t, err)
	assert.True(t, status.IsOverspent)
	assert.True(t, status.WillOverspend)
	assert.True(t, status.Remaining.IsNegative())
}

func TestCalculateBudgetStatusBadPeriod(t *testing.T) {
	_, err := CalculateBudgetStatus(models.Budget{Period: "march"}, nil, now)
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	period, err := ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, period)

	_, err = ParsePeriod("year")
	assert.Error(t, err)
}
