// Package sheet reads portfolio tables from spreadsheets and writes stress
// results back.
//
// Spreadsheets are read as a header row followed by one row per holding.
// Header names are matched ignoring case and surrounding spaces, other
// columns are kept in the portfolio column list but otherwise ignored.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/stress"
	"github.com/xuri/excelize/v2"
)

const (
	// XLSXMime is the MIME type of xlsx spreadsheets.
	XLSXMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// CSVMime is the MIME type of csv files.
	CSVMime = "text/csv"
	// ResultFileName is the default file name of downloaded results.
	ResultFileName = "stress_testing_results.xlsx"
	// ResultSheet is the name of the sheet holding the results.
	ResultSheet = "Stress Results"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported file format, want .xlsx or .csv")

// Read decodes a portfolio from r. The format is chosen by the extension of 'name'.
func Read(r io.Reader, name string) (stress.Portfolio, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		records, err = readXLSX(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return stress.Portfolio{}, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return stress.Portfolio{}, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return decode(records)
}

// ReadFile decodes a portfolio from a file.
func ReadFile(name string) (stress.Portfolio, error) {
	f, err := os.Open(name)
	if err != nil {
		return stress.Portfolio{}, err
	}
	defer f.Close()
	return Read(f, name)
}

// readXLSX returns the raw cell values of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheet")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// decode turns raw records, header first, into a portfolio.
//
// Missing required columns are not an error here: stress.Validate reports
// them. Only the cells of known columns are checked.
func decode(records [][]string) (stress.Portfolio, error) {
	if len(records) == 0 {
		return stress.NewPortfolio(nil), nil
	}

	var columns []string
	index := make(map[string]int)
	for i, h := range records[0] {
		h = stress.CanonicalColumn(h)
		if h == "" {
			continue
		}
		columns = append(columns, h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var rows []stress.Row
	for n, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		line := n + 2 // 1-based, after the header
		cell := func(col string) (string, bool) {
			i, ok := index[col]
			if !ok {
				return "", false
			}
			if i >= len(rec) {
				return "", true
			}
			return strings.TrimSpace(rec[i]), true
		}

		var (
			row stress.Row
			err error
		)
		if v, ok := cell(stress.ColInstrument); ok {
			if v == "" {
				return stress.Portfolio{}, &stress.CellError{Row: line, Column: stress.ColInstrument, Value: v, Err: errors.New("instrument is empty")}
			}
			row.Instrument = v
		}
		if row.Price, err = number(cell, line, stress.ColPrice, true); err != nil {
			return stress.Portfolio{}, err
		}
		if row.Quantity, err = number(cell, line, stress.ColQuantity, false); err != nil {
			return stress.Portfolio{}, err
		}
		if row.Volatility, err = number(cell, line, stress.ColVolatility, true); err != nil {
			return stress.Portfolio{}, err
		}
		rows = append(rows, row)
	}
	return stress.NewPortfolio(columns, rows...), nil
}

// number parses the numeric cell of 'col'. An empty cell is 0.
func number(cell func(string) (string, bool), line int, col string, nonNegative bool) (float64, error) {
	v, ok := cell(col)
	if !ok || v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &stress.CellError{Row: line, Column: col, Value: v, Err: errors.New("not a number")}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &stress.CellError{Row: line, Column: col, Value: v, Err: errors.New("not a finite number")}
	}
	if nonNegative && f < 0 {
		return 0, &stress.CellError{Row: line, Column: col, Value: v, Err: errors.New("must not be negative")}
	}
	return f, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
