package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/etnz/stress"
	"github.com/xuri/excelize/v2"
)

// built-in excel number formats
const (
	numFmtAmount  = 4  // #,##0.00
	numFmtPercent = 10 // 0.00%
)

// WriteXLSX writes the result table as an xlsx workbook with a single sheet.
// Cells stay numeric, only their display format is set.
func WriteXLSX(w io.Writer, res stress.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultSheet); err != nil {
		return err
	}

	header := make([]any, len(stress.ResultColumns))
	for i, c := range stress.ResultColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ResultSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range res.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Instrument, r.Price, r.ShockedPrice, r.Shock, r.Quantity, r.PnL}
		if err := f.SetSheetRow(ResultSheet, cell, &values); err != nil {
			return fmt.Errorf("cannot write %s: %w", r.Instrument, err)
		}
	}

	amount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return err
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: numFmtPercent})
	if err != nil {
		return err
	}
	// Price, Shocked Price | Shock | P&L
	for cols, style := range map[string]int{"B:C": amount, "D:D": percent, "F:F": amount} {
		if err := f.SetColStyle(ResultSheet, cols, style); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteCSV writes the result table as csv, with full precision numbers.
func WriteCSV(w io.Writer, res stress.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stress.ResultColumns); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, r := range res.Rows {
		rec := []string{r.Instrument, ff(r.Price), ff(r.ShockedPrice), ff(r.Shock), ff(r.Quantity), ff(r.PnL)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
