package table

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantText string
	}{
		{name: "empty cell is missing", input: "", wantKind: KindMissing, wantText: ""},
		{name: "whitespace cell is missing", input: "   ", wantKind: KindMissing, wantText: ""},
		{name: "integer", input: "100", wantKind: KindNumber, wantText: "100"},
		{name: "decimal", input: "13.40", wantKind: KindNumber, wantText: "13.4"},
		{name: "negative", input: "-50", wantKind: KindNumber, wantText: "-50"},
		{name: "thousands separator", input: "1,250.75", wantKind: KindNumber, wantText: "1250.75"},
		{name: "text", input: "West", wantKind: KindString, wantText: "West"},
		{name: "trimmed text", input: "  East  ", wantKind: KindString, wantText: "East"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseCell(tt.input)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantText, v.String())
		})
	}
}

func TestValue_AsTime(t *testing.T) {
	v := Str("2024-03-15")
	parsed, ok := v.AsTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), parsed)

	_, ok = Str("not a date").AsTime()
	assert.False(t, ok)

	_, ok = Missing.AsTime()
	assert.False(t, ok)

	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	parsed, ok = Time(d).AsTime()
	require.True(t, ok)
	assert.Equal(t, d, parsed)
}

func TestTable_AppendUnionsColumns(t *testing.T) {
	tbl := New("revenue", "cost")
	tbl.Append(Row{"revenue": NumInt(100), "cost": NumInt(40)})
	tbl.Append(Row{"revenue": NumInt(200), "region": Str("West")})

	assert.ElementsMatch(t, []string{"revenue", "cost", "region"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	// Row missing a column reads as missing.
	assert.True(t, tbl.Value(1, "cost").IsMissing())
	assert.True(t, tbl.Value(0, "region").IsMissing())
}

func TestTable_AppendTable(t *testing.T) {
	a := New("revenue")
	a.Append(Row{"revenue": NumInt(1)})
	b := New("cost")
	b.Append(Row{"cost": NumInt(2)})
	b.Append(Row{"cost": NumInt(3)})

	a.AppendTable(b)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []string{"revenue", "cost"}, a.Columns())
}

func TestTable_LowercaseAndRename(t *testing.T) {
	tbl := New("Revenue", "COST")
	tbl.Append(Row{"Revenue": NumInt(10), "COST": NumInt(5)})

	tbl.LowercaseColumns()
	assert.Equal(t, []string{"revenue", "cost"}, tbl.Columns())
	d, ok := tbl.Value(0, "revenue").Decimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(10)))

	tbl.RenameColumns(map[string]string{"cost": "expenses", "unknown": "ignored"})
	assert.Equal(t, []string{"revenue", "expenses"}, tbl.Columns())
	assert.False(t, tbl.HasColumn("cost"))
	d, ok = tbl.Value(0, "expenses").Decimal()
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(5)))
}

func TestTable_Filter(t *testing.T) {
	tbl := New("region")
	tbl.Append(Row{"region": Str("West")})
	tbl.Append(Row{"region": Str("East")})
	tbl.Append(Row{"region": Str("West")})

	tbl.Filter(func(r Row) bool { return r["region"].String() == "West" })

	require.Equal(t, 2, tbl.Len())
	for _, row := range tbl.Rows() {
		assert.Equal(t, "West", row["region"].String())
	}
}

func TestTable_Aggregate(t *testing.T) {
	tbl := New("revenue")
	tbl.Append(Row{"revenue": NumInt(100)})
	tbl.Append(Row{"revenue": NumInt(200)})
	tbl.Append(Row{"revenue": Missing}) // skipped by both methods

	assert.True(t, tbl.Aggregate("revenue", "sum").Equal(decimal.NewFromInt(300)))
	assert.True(t, tbl.Aggregate("revenue", "mean").Equal(decimal.NewFromInt(150)))

	empty := New("revenue")
	assert.True(t, empty.Aggregate("revenue", "mean").IsZero())
	assert.True(t, empty.Aggregate("revenue", "sum").IsZero())
}

func TestTable_Complete(t *testing.T) {
	tbl := New("revenue", "cost")
	tbl.Append(Row{"revenue": NumInt(1), "cost": NumInt(2)})
	tbl.Append(Row{"revenue": NumInt(1)})

	assert.True(t, tbl.Complete(tbl.Rows()[0]))
	assert.False(t, tbl.Complete(tbl.Rows()[1]))
}
