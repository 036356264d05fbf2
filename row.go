package stress

import (
	"slices"
	"strings"
)

// Column names of the portfolio and result tables.
const (
	ColInstrument   = "Instrument"
	ColPrice        = "Price"
	ColQuantity     = "Quantity"
	ColVolatility   = "Volatility"
	ColShock        = "Shock"
	ColShockedPrice = "Shocked Price"
	ColPnL          = "P&L"
)

// ResultColumns lists the columns of a result table, in display order.
var ResultColumns = []string{ColInstrument, ColPrice, ColShockedPrice, ColShock, ColQuantity, ColPnL}

// Row is one holding of a portfolio.
//
// Volatility is only meaningful if the portfolio has a Volatility column.
// Shock, ShockedPrice and PnL are derived and only meaningful once a scenario
// has been applied.
type Row struct {
	Instrument   string  `json:"instrument"`
	Price        float64 `json:"price"`
	Quantity     float64 `json:"quantity"`
	Volatility   float64 `json:"volatility,omitempty"`
	Shock        float64 `json:"shock"`
	ShockedPrice float64 `json:"shocked_price"`
	PnL          float64 `json:"pnl"`
}

// Portfolio is an ordered table of holdings.
//
// It is a value: every transformation returns a new Portfolio and leaves the
// receiver untouched.
type Portfolio struct {
	columns []string
	rows    []Row
}

// NewPortfolio creates a portfolio from the columns present in the source
// table and its rows.
func NewPortfolio(columns []string, rows ...Row) Portfolio {
	return Portfolio{
		columns: slices.Clone(columns),
		rows:    slices.Clone(rows),
	}
}

// Columns returns the column names found in the source table.
func (p Portfolio) Columns() []string { return slices.Clone(p.columns) }

// HasColumn reports whether the source table had the column 'name'.
// Matching ignores case and surrounding spaces.
func (p Portfolio) HasColumn(name string) bool {
	want := normalizeColumn(name)
	for _, c := range p.columns {
		if normalizeColumn(c) == want {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (p Portfolio) Len() int { return len(p.rows) }

// Row returns the i-th row.
func (p Portfolio) Row(i int) Row { return p.rows[i] }

// Rows returns a copy of all rows.
func (p Portfolio) Rows() []Row { return slices.Clone(p.rows) }

// Instruments returns the instrument of each row, in row order.
func (p Portfolio) Instruments() []string {
	ids := make([]string, len(p.rows))
	for i, r := range p.rows {
		ids[i] = r.Instrument
	}
	return ids
}

// Head returns a portfolio with at most the first n rows.
func (p Portfolio) Head(n int) Portfolio {
	n = min(max(n, 0), len(p.rows))
	return NewPortfolio(p.columns, p.rows[:n]...)
}

// withRows returns a copy of p with new rows but the same columns.
func (p Portfolio) withRows(rows []Row) Portfolio {
	return Portfolio{columns: p.columns, rows: rows}
}

// normalizeColumn returns the canonical form of a column name used for matching.
func normalizeColumn(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// CanonicalColumn returns the canonical spelling of a known column name, or
// the trimmed name if it is not known.
func CanonicalColumn(name string) string {
	n := normalizeColumn(name)
	for _, c := range []string{ColInstrument, ColPrice, ColQuantity, ColVolatility, ColShock, ColShockedPrice, ColPnL} {
		if normalizeColumn(c) == n {
			return c
		}
	}
	return strings.TrimSpace(name)
}
