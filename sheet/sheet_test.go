package sheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/stress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx file from rows, the first one being the header.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRead_XLSX(t *testing.T) {
	buf := workbook(t,
		[]any{"Instrument", "Price", "Quantity", "Volatility", "Sector"},
		[]any{"AAPL", 100, 10, 0.2, "Tech"},
		[]any{"MSFT", 50.5, -20, 0.1, "Tech"},
	)

	p, err := Read(buf, "portfolio.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Instrument", "Price", "Quantity", "Volatility", "Sector"}, p.Columns())
	require.Equal(t, 2, p.Len())
	assert.Equal(t, stress.Row{Instrument: "AAPL", Price: 100, Quantity: 10, Volatility: 0.2}, p.Row(0))
	assert.Equal(t, stress.Row{Instrument: "MSFT", Price: 50.5, Quantity: -20, Volatility: 0.1}, p.Row(1))
	assert.True(t, p.HasColumn(stress.ColVolatility))
}

func TestRead_CSV(t *testing.T) {
	in := "\ufeff instrument , PRICE,quantity\nAAPL,100,10\n\n,,\nMSFT, 50 ,20\n"

	p, err := Read(strings.NewReader(in), "portfolio.CSV")
	require.NoError(t, err)

	assert.Equal(t, []string{"Instrument", "Price", "Quantity"}, p.Columns())
	assert.Equal(t, []string{"AAPL", "MSFT"}, p.Instruments())
	assert.Equal(t, 50.0, p.Row(1).Price)
	assert.False(t, p.HasColumn(stress.ColVolatility))
	require.NoError(t, stress.Validate(p))
}

func TestRead_MissingColumnsIsLeftToValidation(t *testing.T) {
	p, err := Read(strings.NewReader("Instrument,Qty\nAAPL,1\n"), "p.csv")
	require.NoError(t, err)

	var mce *stress.MissingColumnError
	require.ErrorAs(t, stress.Validate(p), &mce)
	assert.Equal(t, []string{"Price", "Quantity"}, mce.Columns)
}

func TestRead_CellErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		row    int
		column string
	}{
		{"empty instrument", "Instrument,Price,Quantity\nAAPL,1,1\n,2,2\n", 3, "Instrument"},
		{"price not a number", "Instrument,Price,Quantity\nAAPL,abc,1\n", 2, "Price"},
		{"negative price", "Instrument,Price,Quantity\nAAPL,-1,1\n", 2, "Price"},
		{"quantity not a number", "Instrument,Price,Quantity\nAAPL,1,ten\n", 2, "Quantity"},
		{"negative volatility", "Instrument,Price,Quantity,Volatility\nAAPL,1,1,-0.2\n", 2, "Volatility"},
		{"NaN price", "Instrument,Price,Quantity\nAAPL,NaN,10\n", 2, "Price"},
		{"infinite quantity", "Instrument,Price,Quantity\nAAPL,1,-Inf\n", 2, "Quantity"},
		{"infinite volatility", "Instrument,Price,Quantity,Volatility\nAAPL,1,1,+Infinity\n", 2, "Volatility"},
		{"overflowing price", "Instrument,Price,Quantity\nAAPL,1e400,1\n", 2, "Price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), "p.csv")
			var ce *stress.CellError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.row, ce.Row)
			assert.Equal(t, tt.column, ce.Column)
		})
	}
}

func TestRead_NegativeQuantityIsAShort(t *testing.T) {
	p, err := Read(strings.NewReader("Instrument,Price,Quantity\nAAPL,10,-5\n"), "p.csv")
	require.NoError(t, err)
	assert.Equal(t, -5.0, p.Row(0).Quantity)
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read(strings.NewReader(""), "portfolio.ods")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRead_Empty(t *testing.T) {
	p, err := Read(strings.NewReader(""), "p.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.Error(t, stress.Validate(p))
}

func TestWriteXLSX(t *testing.T) {
	gfc, err := stress.DefaultRegistry().Scenario("Global Financial Crisis 2008")
	require.NoError(t, err)
	p := stress.NewPortfolio([]string{"Instrument", "Price", "Quantity"},
		stress.Row{Instrument: "AAPL", Price: 100, Quantity: 10},
		stress.Row{Instrument: "MSFT", Price: 50, Quantity: 20},
	)
	res, err := stress.Evaluate(p, gfc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultSheet}, f.GetSheetList())
	rows, err := f.GetRows(ResultSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Instrument", "Price", "Shocked Price", "Shock", "Quantity", "P&L"},
		{"AAPL", "100", "50", "-0.5", "10", "-500"},
		{"MSFT", "50", "35", "-0.3", "20", "-300"},
	}, rows)

	// column -> number format; Quantity keeps the general format.
	for cell, numFmt := range map[string]int{"B2": numFmtAmount, "C2": numFmtAmount, "D2": numFmtPercent, "E2": 0, "F2": numFmtAmount} {
		id, err := f.GetCellStyle(ResultSheet, cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		assert.Equal(t, numFmt, style.NumFmt, cell)
	}
}

func TestWriteCSV(t *testing.T) {
	res := stress.Result{Rows: []stress.Row{
		{Instrument: "AAPL", Price: 100, Quantity: 10, Shock: -0.25, ShockedPrice: 75, PnL: -250},
	}}
	var b strings.Builder
	require.NoError(t, WriteCSV(&b, res))
	assert.Equal(t, "Instrument,Price,Shocked Price,Shock,Quantity,P&L\nAAPL,100,75,-0.25,10,-250\n", b.String())
}
