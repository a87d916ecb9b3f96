// Package main provides the CLI entry point for the sales reporting tool:
// merge a folder of spreadsheets, clean and filter the rows, compute profit
// metrics and aggregates, and write a formatted report.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"salescli/internal/app"
	"salescli/internal/config"
	"salescli/internal/infrastructure"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := config.DefaultOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:   "reporter",
		Short: "Merge, process, and report on sales spreadsheets",
		Long: `reporter merges all Excel files in a folder, cleans and filters the
combined rows, computes profit metrics and aggregates, and writes the result
as a formatted workbook or a set of CSV files.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, configFile)
		},
	}

	flags := cmd.Flags()

	// Merging
	flags.StringVar(&opts.DataFolder, "data-folder", opts.DataFolder, "Folder containing Excel files to merge")
	flags.StringVar(&opts.MergedFile, "merged-file", opts.MergedFile, "Filename for the merged intermediate workbook")
	flags.StringVar(&opts.SheetName, "sheet-name", "", "Sheet name to read from each file (default: all sheets)")

	// Output
	flags.StringVar(&opts.Output, "output", opts.Output, "Filename for the final processed report")
	flags.StringVar(&opts.OutputFormat, "output-format", opts.OutputFormat, "Output format for the report: xlsx or csv")

	// Cleaning
	flags.BoolVar(&opts.DropMissing, "dropna", false, "Drop rows with any missing data")
	flags.StringVar(&opts.FillMissing, "fillna", "", "Fill missing values with the specified number")

	// Date filtering
	flags.StringVar(&opts.StartDate, "start-date", "", "Start date for filtering (YYYY-MM-DD)")
	flags.StringVar(&opts.EndDate, "end-date", "", "End date for filtering (YYYY-MM-DD)")
	flags.StringVar(&opts.DateColumn, "date-column", opts.DateColumn, "Column name for date filtering and monthly totals")

	// Custom filters
	flags.StringArrayVar(&opts.Filters, "filter", nil, "Custom filter in the format column:value; repeatable")

	// Aggregation and derived metrics
	flags.StringVar(&opts.AggMethod, "agg-method", opts.AggMethod, "Aggregation method for the summary: sum or mean")
	flags.BoolVar(&opts.CalcProfitMargin, "calc-profit-margin", false, "Calculate profit margin (profit/revenue * 100)")

	// Pivot table
	flags.BoolVar(&opts.GeneratePivot, "generate-pivot", false, "Generate a pivot table")
	flags.StringVar(&opts.PivotIndex, "pivot-index", "", "Column to use as the pivot table index")
	flags.StringVar(&opts.PivotValues, "pivot-values", "", "Column to aggregate in the pivot table")

	// Archiving
	flags.BoolVar(&opts.Archive, "archive", false, "Archive input files after processing")
	flags.StringVar(&opts.ArchiveFolder, "archive-folder", opts.ArchiveFolder, "Folder to move archived files into")

	// Transformations and extras
	flags.StringVar(&opts.TransformConfig, "config", "", "JSON configuration file for custom transformations")
	flags.BoolVar(&opts.ColorCode, "color-code", false, "Apply color coding to the profit column in the final workbook")
	flags.StringVar(&opts.Email, "email", "", "Email address to notify in case of errors (placeholder)")

	// Logging
	flags.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose output")
	flags.StringVar(&opts.LogFile, "log-file", "", "Log file to record detailed processing information")
	flags.StringVar(&configFile, "app-config", "", "Application config file (YAML)")

	return cmd
}

func run(opts config.Options, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// CLI logging flags override the app config.
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.LogFile != "" {
		cfg.Logging.Output = "both"
		cfg.Logging.FilePath = opts.LogFile
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithRunID(context.Background())

	if err := app.New(logger, opts).Run(ctx); err != nil {
		logger.ErrorContext(ctx, "reporting run failed", slog.String("error", err.Error()))
		fmt.Printf("An error occurred: %v\n", err)
		if opts.Email != "" {
			fmt.Printf("Notification sent to %s (placeholder).\n", opts.Email)
		}
		return err
	}

	fmt.Println("Sales reporting run completed successfully.")
	return nil
}
