package aggregate

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/table"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// profitTable builds a cleaned table the way the transformer leaves it:
// lower-cased columns with profit already derived.
func profitTable() *table.Table {
	tbl := table.New("revenue", "cost", "profit", "region", "date")
	add := func(revenue, cost int64, region, date string) {
		tbl.Append(table.Row{
			"revenue": table.NumInt(revenue),
			"cost":    table.NumInt(cost),
			"profit":  table.NumInt(revenue - cost),
			"region":  table.Str(region),
			"date":    table.Str(date),
		})
	}
	add(100, 40, "West", "2024-01-15")
	add(200, 250, "East", "2024-01-20")
	add(50, 20, "West", "2024-02-05")
	return tbl
}

func TestSummarize_Sum(t *testing.T) {
	tbl := table.New("revenue", "cost", "profit")
	tbl.Append(table.Row{"revenue": table.NumInt(100), "cost": table.NumInt(40), "profit": table.NumInt(60)})
	tbl.Append(table.Row{"revenue": table.NumInt(200), "cost": table.NumInt(250), "profit": table.NumInt(-50)})

	s := Summarize(tbl, "sum", false)

	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, s.Cost.Equal(decimal.NewFromInt(290)))
	assert.True(t, s.Profit.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, s.Margin)
}

func TestSummarize_Mean(t *testing.T) {
	s := Summarize(profitTable(), "mean", false)

	// (100+200+50)/3, (40+250+20)/3, (60-50+30)/3
	assert.True(t, s.Revenue.Round(4).Equal(decimal.RequireFromString("116.6667")))
	assert.True(t, s.Cost.Round(4).Equal(decimal.RequireFromString("103.3333")))
	assert.True(t, s.Profit.Round(4).Equal(decimal.RequireFromString("13.3333")))
}

func TestSummarize_MarginOnAggregatedTotals(t *testing.T) {
	s := Summarize(profitTable(), "sum", true)

	require.NotNil(t, s.Margin)
	// 40 profit over 350 revenue.
	want := decimal.NewFromInt(40).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(350))
	assert.True(t, s.Margin.Equal(want), "margin = %s", s.Margin)
}

func TestSummarize_MarginZeroRevenue(t *testing.T) {
	tbl := table.New("revenue", "cost", "profit")
	tbl.Append(table.Row{"revenue": table.NumInt(0), "cost": table.NumInt(10), "profit": table.NumInt(-10)})

	s := Summarize(tbl, "sum", true)
	require.NotNil(t, s.Margin)
	assert.True(t, s.Margin.IsZero())
}

func TestBuildPivot(t *testing.T) {
	pivot := BuildPivot(context.Background(), testLogger(), profitTable(), "Region", "Revenue", "sum")

	require.NotNil(t, pivot)
	assert.Equal(t, "region", pivot.Index)
	assert.Equal(t, "revenue", pivot.Values)
	require.Len(t, pivot.Rows, 2)

	// Grouped rows come back sorted by index value.
	assert.Equal(t, "East", pivot.Rows[0].Key)
	assert.True(t, pivot.Rows[0].Value.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "West", pivot.Rows[1].Key)
	assert.True(t, pivot.Rows[1].Value.Equal(decimal.NewFromInt(150)))
}

func TestBuildPivot_Mean(t *testing.T) {
	pivot := BuildPivot(context.Background(), testLogger(), profitTable(), "region", "revenue", "mean")

	require.NotNil(t, pivot)
	require.Len(t, pivot.Rows, 2)
	assert.True(t, pivot.Rows[1].Value.Equal(decimal.NewFromInt(75))) // West: (100+50)/2
}

func TestBuildPivot_MissingColumns(t *testing.T) {
	pivot := BuildPivot(context.Background(), testLogger(), profitTable(), "category", "revenue", "sum")
	assert.Nil(t, pivot)

	pivot = BuildPivot(context.Background(), testLogger(), profitTable(), "region", "units", "sum")
	assert.Nil(t, pivot)
}

func TestMonthlyTotals(t *testing.T) {
	rows := MonthlyTotals(context.Background(), testLogger(), profitTable(), "date", false)

	require.Len(t, rows, 3) // two months plus the final total

	assert.Equal(t, "2024-01", rows[0].Month)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, rows[0].Profit.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, "2024-02", rows[1].Month)
	assert.True(t, rows[1].Revenue.Equal(decimal.NewFromInt(50)))

	final := rows[2]
	assert.Equal(t, FinalTotalKey, final.Month)

	// The final total equals the sum of the per-month rows.
	sumRevenue, sumCost, sumProfit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows[:2] {
		sumRevenue = sumRevenue.Add(r.Revenue)
		sumCost = sumCost.Add(r.Cost)
		sumProfit = sumProfit.Add(r.Profit)
	}
	assert.True(t, final.Revenue.Equal(sumRevenue))
	assert.True(t, final.Cost.Equal(sumCost))
	assert.True(t, final.Profit.Equal(sumProfit))
}

func TestMonthlyTotals_WithMargin(t *testing.T) {
	tbl := table.New("revenue", "cost", "profit", "date")
	tbl.Append(table.Row{
		"revenue": table.NumInt(0), "cost": table.NumInt(5),
		"profit": table.NumInt(-5), "date": table.Str("2024-03-01"),
	})

	rows := MonthlyTotals(context.Background(), testLogger(), tbl, "date", true)
	require.Len(t, rows, 2)

	// Zero revenue month and final total both carry a margin of exactly 0.
	require.NotNil(t, rows[0].Margin)
	assert.True(t, rows[0].Margin.IsZero())
	require.NotNil(t, rows[1].Margin)
	assert.True(t, rows[1].Margin.IsZero())
}

func TestMonthlyTotals_AbsentDateColumn(t *testing.T) {
	tbl := table.New("revenue", "cost", "profit")
	tbl.Append(table.Row{"revenue": table.NumInt(1), "cost": table.NumInt(1), "profit": table.NumInt(0)})

	rows := MonthlyTotals(context.Background(), testLogger(), tbl, "date", false)
	assert.Nil(t, rows)
}

func TestMonthlyTotals_UnparsableDates(t *testing.T) {
	tbl := table.New("revenue", "cost", "profit", "date")
	tbl.Append(table.Row{
		"revenue": table.NumInt(10), "cost": table.NumInt(5),
		"profit": table.NumInt(5), "date": table.Str("2024-04-02"),
	})
	tbl.Append(table.Row{
		"revenue": table.NumInt(20), "cost": table.NumInt(5),
		"profit": table.NumInt(15), "date": table.Str("garbage"),
	})

	rows := MonthlyTotals(context.Background(), testLogger(), tbl, "date", false)
	require.Len(t, rows, 2)

	// The unparsable row joins no month group but still counts in the final
	// total, which sums the entire table.
	assert.Equal(t, "2024-04", rows[0].Month)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[1].Revenue.Equal(decimal.NewFromInt(30)))
}
