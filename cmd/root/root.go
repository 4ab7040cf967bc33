// Package root contains the root command for the application.
package root

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"vkazakov/fintrack/internal/aiclassify"
	"vkazakov/fintrack/internal/config"
	"vkazakov/fintrack/internal/export"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/pdfparser"
	"vkazakov/fintrack/internal/pipeline"
	"vkazakov/fintrack/internal/rules"
	"vkazakov/fintrack/internal/statement"
	"vkazakov/fintrack/internal/store"
)

// CommonFlags holds the flags shared by multiple commands.
type CommonFlags struct {
	Input  string
	Output string
	Card   string
}

var (
	// Log is the shared logger instance for commands.
	Log = logging.GetLogger()

	// Cfg is the loaded application configuration, set by PersistentPreRun.
	Cfg *config.Config

	// SharedFlags are the common flags accessible to all commands.
	SharedFlags = CommonFlags{}

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "fintrack",
		Short: "A CLI tool to import bank statements, classify transactions and forecast budgets.",
		Long: `fintrack ingests bank statement exports (CSV or PDF), normalizes them into
typed, categorized, deduplicated transactions, and derives budget forecasts
and spending insights from the stored data.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to fintrack!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatal("Failed to load configuration",
					logging.Field{Key: "error", Value: err.Error()})
			}
			Cfg = cfg

			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
			logging.SetDefaultLogger(Log)

			statement.SetLogger(Log)
			rules.SetLogger(Log)
			store.SetLogger(Log)
			pipeline.SetLogger(Log)
			pdfparser.SetLogger(Log)
			aiclassify.SetLogger(Log)
			export.SetLogger(Log)
		},
	}
)

// Init initializes the root command and all flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Card, "card", "c", "default", "Funding instrument (card) identifier")
}

// DataPath resolves a data file name against the configured data directory.
func DataPath(filename string) string {
	if Cfg != nil && Cfg.Data.Directory != "" && !filepath.IsAbs(filename) {
		return filepath.Join(Cfg.Data.Directory, filename)
	}
	return filename
}

// OpenTransactionStore opens the configured SQLite transaction store.
func OpenTransactionStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(DataPath(Cfg.Data.DatabaseFile))
}

// LoadRuleEngine loads rules and the category catalog and builds the rule
// engine commands categorize with.
func LoadRuleEngine() (*rules.Engine, *store.RuleStore, error) {
	ruleStore := store.NewRuleStore(DataPath(Cfg.Data.RulesFile))
	if err := ruleStore.Load(); err != nil {
		return nil, nil, err
	}
	categories, err := store.NewCategoryStore("").LoadCategories()
	if err != nil {
		return nil, nil, err
	}
	return rules.NewEngine(ruleStore.List(), categories), ruleStore, nil
}

// ExportDelimiter returns the configured CSV export delimiter.
func ExportDelimiter() rune {
	if Cfg == nil || Cfg.Export.Delimiter == "" {
		return ','
	}
	return []rune(Cfg.Export.Delimiter)[0]
}
