// Package app wires the reporting pipeline together: collect, transform,
// aggregate, write, archive. Each stage runs to completion before the next;
// any fatal stage error aborts the run.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"salescli/internal/aggregate"
	"salescli/internal/collector"
	"salescli/internal/config"
	"salescli/internal/exporter"
	"salescli/internal/files"
	"salescli/internal/transform"
)

// App executes one reporting run.
type App struct {
	logger *slog.Logger
	opts   config.Options
}

// New creates an App for the given run options.
func New(logger *slog.Logger, opts config.Options) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{logger: logger, opts: opts}
}

// Run executes the pipeline once. It returns the first fatal error; degraded
// features (skipped filters, omitted pivot, skipped monthly totals) are
// logged and do not fail the run.
func (a *App) Run(ctx context.Context) error {
	if err := a.opts.Validate(); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "starting reporting run",
		slog.String("data_folder", a.opts.DataFolder),
		slog.String("output", a.opts.Output),
		slog.String("output_format", a.opts.OutputFormat),
		slog.String("agg_method", a.opts.AggMethod))

	sheet := collector.AllSheets()
	if a.opts.SheetName != "" {
		sheet = collector.NamedSheet(a.opts.SheetName)
	}

	merged, sources, err := collector.New(a.logger).Merge(ctx, a.opts.DataFolder, sheet, a.opts.MergedFile)
	if err != nil {
		return err
	}
	a.progress("Merged %d files into %d rows\n", len(sources), merged.Len())

	if err := transform.New(a.logger, a.opts).Apply(ctx, merged); err != nil {
		return err
	}
	a.progress("Cleaned data: %d rows remain\n", merged.Len())

	summary := aggregate.Summarize(merged, a.opts.AggMethod, a.opts.CalcProfitMargin)

	var pivot *aggregate.Pivot
	if a.opts.GeneratePivot && a.opts.PivotIndex != "" && a.opts.PivotValues != "" {
		pivot = aggregate.BuildPivot(ctx, a.logger, merged,
			a.opts.PivotIndex, a.opts.PivotValues, a.opts.AggMethod)
	}

	monthly := aggregate.MonthlyTotals(ctx, a.logger, merged,
		a.opts.DateColumn, a.opts.CalcProfitMargin)

	report := exporter.Report{
		Cleaned: merged,
		Summary: summary,
		Pivot:   pivot,
		Monthly: monthly,
	}
	if err := exporter.NewWriter(a.logger).Save(ctx, report, a.opts.Output, a.opts.OutputFormat, a.opts.ColorCode); err != nil {
		return err
	}
	a.progress("Report saved to %s\n", a.opts.Output)

	if a.opts.Archive {
		if err := files.NewArchiver(a.logger).Archive(ctx, sources, a.opts.ArchiveFolder); err != nil {
			return err
		}
		a.progress("Archived %d source files to %s\n", len(sources), a.opts.ArchiveFolder)
	}

	a.logger.InfoContext(ctx, "reporting run completed")
	return nil
}

// progress prints a stage progress line in verbose mode, alongside the
// structured log.
func (a *App) progress(format string, args ...interface{}) {
	if a.opts.Verbose {
		fmt.Printf(format, args...)
	}
}
