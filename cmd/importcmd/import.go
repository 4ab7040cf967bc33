// Package importcmd handles statement import commands.
package importcmd

import (
	"os"

	"github.com/spf13/cobra"

	"vkazakov/fintrack/cmd/root"
	"vkazakov/fintrack/internal/export"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/pipeline"
)

var replace bool

// Cmd represents the import command.
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV bank statement",
	Long: `Import a CSV bank statement export for a card. Rows already stored
(matched by document id) are refreshed in place; manual categorization
survives re-import. With --replace the card's stored transactions are
replaced wholesale.`,
	Run: importFunc,
}

func init() {
	Cmd.Flags().BoolVar(&replace, "replace", false, "Replace the card's stored transactions instead of merging")
}

func importFunc(cmd *cobra.Command, args []string) {
	if root.SharedFlags.Input == "" {
		root.Log.Fatal("No input file given, use --input")
	}

	content, err := os.ReadFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to read input file")
	}

	engine, _, err := root.LoadRuleEngine()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load rules")
	}

	txStore, err := root.OpenTransactionStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open transaction store")
	}
	defer txStore.Close()

	importer := pipeline.NewImporter(txStore, engine)

	var result pipeline.ImportResult
	if replace {
		result, err = importer.ReplaceStatement(content, root.SharedFlags.Card)
	} else {
		result, err = importer.ImportStatement(content, root.SharedFlags.Card)
	}
	if err != nil {
		root.Log.WithError(err).Fatal("Import failed")
	}

	root.Log.Info("Import completed",
		logging.Field{Key: "card", Value: root.SharedFlags.Card},
		logging.Field{Key: "total", Value: result.Total},
		logging.Field{Key: "new", Value: result.New},
		logging.Field{Key: "updated", Value: result.Updated})

	if root.SharedFlags.Output != "" {
		transactions, err := txStore.ListByCard(root.SharedFlags.Card)
		if err != nil {
			root.Log.WithError(err).Fatal("Failed to list transactions for export")
		}
		if err := export.WriteTransactionsFile(root.SharedFlags.Output, transactions, root.ExportDelimiter()); err != nil {
			root.Log.WithError(err).Fatal("Failed to write export file")
		}
	}
}
