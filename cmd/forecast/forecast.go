// Package forecast handles budget projection commands.
package forecast

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vkazakov/fintrack/cmd/root"
	"vkazakov/fintrack/internal/forecast"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/store"
)

var (
	horizonFlag string
	budgetFile  string
	daily       bool
)

// Cmd represents the forecast command.
var Cmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project balances over a horizon",
	Long: `Project daily card and savings balances from current balances,
recurring income and expenses, planned one-off expenses and savings
interest, over a 1m, 3m, 6m or 1y horizon.`,
	Run: forecastFunc,
}

func init() {
	Cmd.Flags().StringVar(&horizonFlag, "horizon", "1m", "Projection horizon: 1m, 3m, 6m or 1y")
	Cmd.Flags().StringVar(&budgetFile, "budget", "", "Budget configuration YAML file")
	Cmd.Flags().BoolVar(&daily, "daily", false, "Print the full daily series instead of a summary")
}

func forecastFunc(cmd *cobra.Command, args []string) {
	horizon, err := forecast.ParseHorizon(horizonFlag)
	if err != nil {
		root.Log.Fatal(err.Error())
	}

	budgetPath := budgetFile
	if budgetPath == "" {
		budgetPath = "budget.yaml"
	}
	budget, err := store.NewBudgetStore(root.DataPath(budgetPath)).Load()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load budget configuration")
	}

	result := forecast.Simulate(forecast.Input{
		CardBalance:      budget.CardBalance,
		SavingsAccounts:  budget.SavingsAccounts,
		RecurringIncome:  budget.RecurringIncome,
		RecurringExpense: budget.RecurringExpense,
		PlannedExpenses:  budget.PlannedExpenses,
	}, horizon, time.Now())

	if len(result.Points) == 0 {
		root.Log.Warn("Forecast produced no points")
		return
	}

	if daily {
		for _, point := range result.Points {
			fmt.Printf("%s\tcard=%.2f\tsavings=%.2f\ttotal=%.2f\n",
				point.Date.Format("2006-01-02"), point.CardBalance, point.SavingsBalance, point.TotalBalance)
		}
	}

	final := result.Points[len(result.Points)-1]
	root.Log.Info("Forecast completed",
		logging.Field{Key: "horizon", Value: string(horizon)},
		logging.Field{Key: "finalCard", Value: fmt.Sprintf("%.2f", final.CardBalance)},
		logging.Field{Key: "finalSavings", Value: fmt.Sprintf("%.2f", final.SavingsBalance)},
		logging.Field{Key: "finalTotal", Value: fmt.Sprintf("%.2f", final.TotalBalance)},
		logging.Field{Key: "totalIncome", Value: fmt.Sprintf("%.2f", result.TotalIncome)},
		logging.Field{Key: "totalExpenses", Value: fmt.Sprintf("%.2f", result.TotalExpenses)},
		logging.Field{Key: "totalInterest", Value: fmt.Sprintf("%.2f", result.TotalInterest)})
}
