package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "salescli/internal/errors"
)

// Aggregation methods accepted by the summary, pivot and monthly stages.
const (
	AggSum  = "sum"
	AggMean = "mean"
)

// Output formats accepted by the report writer.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Options holds the parameters of a single reporting run. It is populated
// from CLI flags and validated once before the pipeline starts.
type Options struct {
	// Merging
	DataFolder string `validate:"required"`
	MergedFile string `validate:"required"`
	SheetName  string

	// Output
	Output       string `validate:"required"`
	OutputFormat string `validate:"oneof=xlsx csv"`

	// Cleaning
	DropMissing bool
	FillMissing string `validate:"omitempty,numeric"`

	// Date filtering
	StartDate  string `validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `validate:"omitempty,datetime=2006-01-02"`
	DateColumn string `validate:"required"`

	// Custom equality filters, each in "column:value" form.
	Filters []string

	// Aggregation and derived metrics
	AggMethod        string `validate:"oneof=sum mean"`
	CalcProfitMargin bool

	// Pivot table
	GeneratePivot bool
	PivotIndex    string
	PivotValues   string

	// Archiving
	Archive       bool
	ArchiveFolder string

	// Transformations
	TransformConfig string

	// Reporting extras
	ColorCode bool
	Email     string
	Verbose   bool
	LogFile   string
}

// DefaultOptions mirrors the defaults of the CLI flag surface.
func DefaultOptions() Options {
	return Options{
		DataFolder:    "data",
		MergedFile:    "merged_sales_data.xlsx",
		Output:        "final_report.xlsx",
		OutputFormat:  FormatXLSX,
		DateColumn:    "date",
		AggMethod:     AggSum,
		ArchiveFolder: "archive",
	}
}

// Validate checks the options once at load time. Malformed date range
// strings and unknown aggregation methods or output formats are fatal.
func (o *Options) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(o); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid run options", err)
	}
	if o.DropMissing && o.FillMissing != "" {
		return apperrors.NewValidationError("--dropna and --fillna are mutually exclusive")
	}
	return nil
}

// FillValue returns the missing-value fill constant, when configured.
func (o *Options) FillValue() (decimal.Decimal, bool) {
	if strings.TrimSpace(o.FillMissing) == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(o.FillMissing))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DateRange reports whether a date range filter is configured. Filtering
// activates only when both endpoints are present.
func (o *Options) DateRange() bool {
	return o.StartDate != "" && o.EndDate != ""
}
