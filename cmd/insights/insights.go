// Package insights handles spending analytics commands.
package insights

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"vkazakov/fintrack/cmd/root"
	"vkazakov/fintrack/internal/insights"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/store"
)

var (
	periodFlag string
	limit      int
	budgetFile string
)

// Cmd represents the insights command.
var Cmd = &cobra.Command{
	Use:   "insights",
	Short: "Show spending insights for a card",
	Long: `Derive spending analytics from a card's stored transactions:
small-expense leaks, top merchants, month-over-month category spikes and
budget status.`,
	Run: insightsFunc,
}

func init() {
	Cmd.Flags().StringVar(&periodFlag, "period", "month", "Analysis period: week or month")
	Cmd.Flags().IntVar(&limit, "limit", 10, "Number of top merchants to show")
	Cmd.Flags().StringVar(&budgetFile, "budget", "", "Budget configuration YAML file")
}

func insightsFunc(cmd *cobra.Command, args []string) {
	period, err := insights.ParsePeriod(periodFlag)
	if err != nil {
		root.Log.Fatal(err.Error())
	}

	txStore, err := root.OpenTransactionStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open transaction store")
	}
	defer txStore.Close()

	transactions, err := txStore.ListByCard(root.SharedFlags.Card)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to list transactions")
	}
	if len(transactions) == 0 {
		root.Log.Info("No stored transactions for card",
			logging.Field{Key: "card", Value: root.SharedFlags.Card})
		return
	}

	now := time.Now()
	cfg := root.Cfg

	leaks := insights.CalculateLeaks(transactions, period,
		decimal.NewFromFloat(cfg.Insights.LeakThreshold), now)
	fmt.Printf("Leaks (%s): %d small expenses totaling %s (threshold %s)\n",
		leaks.Period, leaks.Count, leaks.Total.StringFixed(2), leaks.Threshold.StringFixed(2))
	for _, merchant := range leaks.TopMerchants {
		fmt.Printf("  %s\t%s (%d)\n", merchant.MerchantNorm, merchant.Total.StringFixed(2), merchant.Count)
	}

	fmt.Printf("\nTop merchants (%s):\n", period)
	for _, merchant := range insights.TopMerchants(transactions, period, limit, now) {
		fmt.Printf("  %s\t%s (%d)\t%s\n",
			merchant.MerchantNorm, merchant.Total.StringFixed(2), merchant.Count, merchant.CategoryID)
	}

	spikes := insights.DetectSpikes(transactions, insights.SpikeThresholds{
		Percentage:    cfg.Insights.SpikePercentage,
		AbsoluteFloor: decimal.NewFromFloat(cfg.Insights.SpikeAbsoluteFloor),
	}, now)
	if len(spikes) > 0 {
		fmt.Println("\nSpending spikes vs last month:")
		for _, spike := range spikes {
			fmt.Printf("  %s\t%s -> %s (+%.1f%%)\n",
				spike.CategoryID, spike.PreviousTotal.StringFixed(2),
				spike.CurrentTotal.StringFixed(2), spike.PercentageChange)
		}
	}

	budgetPath := budgetFile
	if budgetPath == "" {
		budgetPath = "budget.yaml"
	}
	budget, err := store.NewBudgetStore(root.DataPath(budgetPath)).Load()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load budget configuration")
	}
	if len(budget.Budgets) > 0 {
		fmt.Println("\nBudget status:")
		for _, b := range budget.Budgets {
			status, err := insights.CalculateBudgetStatus(b, transactions, now)
			if err != nil {
				root.Log.WithError(err).Warn("Skipping budget",
					logging.Field{Key: "budget", Value: b.ID})
				continue
			}
			flag := ""
			if status.IsOverspent {
				flag = " OVERSPENT"
			} else if status.WillOverspend {
				flag = " will overspend"
			}
			fmt.Printf("  %s %s\tspent %s of %s, forecast %s%s\n",
				status.CategoryID, status.Period, status.Spent.StringFixed(2),
				status.Limit.StringFixed(2), status.Forecast.StringFixed(2), flag)
		}
	}
}
