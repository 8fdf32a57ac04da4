package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/pipeline"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import expenses from JSON, JSONL and CSV files",
	Long: `Import expenses from every .json, .jsonl and .csv file under a directory.

Files that have not changed since the last import are skipped. Records keep
their id when they carry one, so importing the same export twice updates
rather than duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Workers report progress concurrently and may finish out of order.
	var (
		mu   sync.Mutex
		bar  *progressbar.ProgressBar
		seen int
	)
	progress := func(current, total int) {
		if flagQuiet {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("  Importing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
		}
		if current > seen {
			seen = current
			_ = bar.Set(current)
		}
	}

	result, err := pipeline.Import(cmd.Context(), args[0], db, db, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	if result.TotalFiles == 0 {
		fmt.Printf("\n  No import files found in %s\n", args[0])
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Import",
		Headers: []string{"", "Count"},
		Rows: [][]string{
			{"Files found", cli.FormatNumber(int64(result.TotalFiles))},
			{"Unchanged", cli.FormatNumber(int64(result.Skipped))},
			{"Parsed", cli.FormatNumber(int64(result.ParsedFiles))},
			{"Expenses saved", cli.FormatNumber(int64(result.Saved))},
		},
	}))

	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be read\n", result.FileErrors)
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed records were skipped or zeroed\n", result.ParseErrors)
	}
	return nil
}
