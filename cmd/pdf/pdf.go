// Package pdf handles PDF statement inspection commands.
package pdf

import (
	"fmt"

	"github.com/spf13/cobra"

	"vkazakov/fintrack/cmd/root"
	"vkazakov/fintrack/internal/logging"
	"vkazakov/fintrack/internal/pdfparser"
)

var grouped bool

// Cmd represents the pdf command.
var Cmd = &cobra.Command{
	Use:   "pdf",
	Short: "Extract row candidates from a PDF statement",
	Long: `Extract the text layer of a PDF statement (via pdftotext) and split it
into row candidates, optionally grouped into per-transaction blocks. The
output is heuristic and meant for inspection or downstream classification,
not for direct import.`,
	Run: pdfFunc,
}

func init() {
	Cmd.Flags().BoolVar(&grouped, "blocks", false, "Group rows into per-transaction blocks")
}

func pdfFunc(cmd *cobra.Command, args []string) {
	if root.SharedFlags.Input == "" {
		root.Log.Fatal("No input file given, use --input")
	}

	rows, err := pdfparser.ExtractRows(pdfparser.NewPdftotextExtractor(), root.SharedFlags.Input)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to extract PDF text")
	}

	if grouped {
		blocks := pdfparser.GroupBlocks(rows)
		root.Log.Info("Grouped PDF rows into blocks",
			logging.Field{Key: "rows", Value: len(rows)},
			logging.Field{Key: "blocks", Value: len(blocks)})
		for i, block := range blocks {
			fmt.Printf("%d\t%s\n", i+1, block.Text())
		}
		return
	}

	for _, row := range rows {
		fmt.Printf("%s\t%s\n", row.ID, row.Text)
	}
}
