package stress

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ApplyScenario returns a copy of p whose Shock column is set by s.
// Derived columns are reset; use ComputePnL to value the result.
func ApplyScenario(p Portfolio, s Scenario) (Portfolio, error) {
	shocks, err := s.Shocks(p)
	if err != nil {
		return Portfolio{}, err
	}
	if len(shocks) != p.Len() {
		return Portfolio{}, fmt.Errorf("%s returned %d shocks for %d rows", s.Name(), len(shocks), p.Len())
	}
	rows := p.Rows()
	for i := range rows {
		rows[i].Shock = shocks[i]
		rows[i].ShockedPrice = 0
		rows[i].PnL = 0
	}
	return p.withRows(rows), nil
}

// ComputePnL values every row of p from its Price, Quantity and Shock:
//
//	ShockedPrice = Price * (1 + Shock)
//	PnL          = (ShockedPrice - Price) * Quantity
//
// and returns the rows with the total P&L.
func ComputePnL(p Portfolio) Result {
	rows := p.Rows()
	pnl := make([]float64, len(rows))
	for i := range rows {
		r := &rows[i]
		r.ShockedPrice = r.Price * (1 + r.Shock)
		r.PnL = (r.ShockedPrice - r.Price) * r.Quantity
		pnl[i] = r.PnL
	}
	return Result{Rows: rows, Total: floats.Sum(pnl)}
}

// checkFinite returns a *NonFiniteError for the first derived value of r
// that overflowed, the total included.
func (r Result) checkFinite() error {
	for _, row := range r.Rows {
		if err := checkFinite(row.Instrument, ColShockedPrice, row.ShockedPrice); err != nil {
			return err
		}
		if err := checkFinite(row.Instrument, ColPnL, row.PnL); err != nil {
			return err
		}
	}
	return checkFinite("", "Total "+ColPnL, r.Total)
}

// Result is the valuation of a shocked portfolio.
type Result struct {
	Scenario string  `json:"scenario"`
	Rows     []Row   `json:"rows"`
	Total    float64 `json:"total"`
}

// Worst returns the row with the lowest P&L, and false if there are no rows.
func (r Result) Worst() (Row, bool) {
	if len(r.Rows) == 0 {
		return Row{}, false
	}
	return slices.MinFunc(r.Rows, func(a, b Row) int {
		switch {
		case a.PnL < b.PnL:
			return -1
		case a.PnL > b.PnL:
			return 1
		}
		return 0
	}), true
}

// Losers returns the number of rows with a negative P&L.
func (r Result) Losers() int {
	n := 0
	for _, row := range r.Rows {
		if row.PnL < 0 {
			n++
		}
	}
	return n
}

// Gainers returns the number of rows with a positive P&L.
func (r Result) Gainers() int {
	n := 0
	for _, row := range r.Rows {
		if row.PnL > 0 {
			n++
		}
	}
	return n
}

// GrossExposure returns the sum of the absolute market values before shock.
func (r Result) GrossExposure() float64 {
	values := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		values[i] = math.Abs(row.Price * row.Quantity)
	}
	return floats.Sum(values)
}

// Impact returns the total P&L as a fraction of the gross exposure,
// 0 when there is no exposure.
func (r Result) Impact() float64 {
	exposure := r.GrossExposure()
	if exposure == 0 {
		return 0
	}
	return r.Total / exposure
}
