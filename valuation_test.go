package stress

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluate_GlobalFinancialCrisis(t *testing.T) {
	gfc, err := DefaultRegistry().Scenario("Global Financial Crisis 2008")
	if err != nil {
		t.Fatalf("Scenario() error = %v", err)
	}

	res, err := Evaluate(aaplMsft(), gfc)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := []Row{
		{Instrument: "AAPL", Price: 100, Quantity: 10, Shock: -0.5, ShockedPrice: 50, PnL: -500},
		{Instrument: "MSFT", Price: 50, Quantity: 20, Shock: -0.3, ShockedPrice: 35, PnL: -300},
	}
	if len(res.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(res.Rows), len(want))
	}
	for i := range want {
		if res.Rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, res.Rows[i], want[i])
		}
	}
	if res.Total != -800 {
		t.Errorf("Total = %v, want -800", res.Total)
	}
	if res.Scenario != "Global Financial Crisis 2008" {
		t.Errorf("Scenario = %q", res.Scenario)
	}
}

func TestComputePnL_Invariants(t *testing.T) {
	p := NewPortfolio([]string{"Instrument", "Price", "Quantity"},
		Row{Instrument: "A", Price: 12.34, Quantity: -7, Shock: 0.17},
		Row{Instrument: "B", Price: 0, Quantity: 1000, Shock: -1},
		Row{Instrument: "C", Price: 99.99, Quantity: 0.5, Shock: -0.033},
		Row{Instrument: "D", Price: 1e6, Quantity: 3, Shock: 0},
		// stale derived values must be overwritten
		Row{Instrument: "E", Price: 10, Quantity: 1, Shock: 0.1, ShockedPrice: 999, PnL: 999},
	)

	res := ComputePnL(p)

	var sum float64
	for _, r := range res.Rows {
		if want := r.Price * (1 + r.Shock); r.ShockedPrice != want {
			t.Errorf("%s: ShockedPrice = %v, want %v", r.Instrument, r.ShockedPrice, want)
		}
		if want := (r.ShockedPrice - r.Price) * r.Quantity; r.PnL != want {
			t.Errorf("%s: PnL = %v, want %v", r.Instrument, r.PnL, want)
		}
		sum += r.PnL
	}
	if diff := res.Total - sum; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Total = %v, want %v", res.Total, sum)
	}
	if got := res.Rows[3].PnL; got != 0 {
		t.Errorf("unshocked row PnL = %v, want 0", got)
	}
}

func TestComputePnL_DoesNotMutateInput(t *testing.T) {
	p := NewPortfolio([]string{"Instrument", "Price", "Quantity"},
		Row{Instrument: "A", Price: 10, Quantity: 1, Shock: 0.5})
	_ = ComputePnL(p)
	if r := p.Row(0); r.ShockedPrice != 0 || r.PnL != 0 {
		t.Errorf("input row modified: %+v", r)
	}
}

func TestApplyScenario_ResetsBetweenScenarios(t *testing.T) {
	p := aaplMsft()
	gfc, _ := DefaultRegistry().Scenario("Global Financial Crisis 2008")

	shocked, err := ApplyScenario(p, gfc)
	if err != nil {
		t.Fatal(err)
	}
	// apply a second scenario on the shocked table: no accumulation.
	valued := NewPortfolio(shocked.Columns(), ComputePnL(shocked).Rows...)
	again, err := ApplyScenario(valued, NewSpecifiedShocks(map[string]float64{"MSFT": 0.1}))
	if err != nil {
		t.Fatal(err)
	}
	if got := again.Row(0); got.Shock != 0 || got.ShockedPrice != 0 || got.PnL != 0 {
		t.Errorf("AAPL = %+v, want shock 0 and no derived values", got)
	}
	if got := again.Row(1).Shock; got != 0.1 {
		t.Errorf("MSFT shock = %v, want 0.1", got)
	}
	if got := p.Row(0).Shock; got != 0 {
		t.Errorf("input modified, AAPL shock = %v", got)
	}
}

func TestApplyScenario_RowIdentityIsStable(t *testing.T) {
	p := NewPortfolio([]string{"Instrument", "Price", "Quantity"},
		Row{Instrument: "MSFT", Price: 1, Quantity: 1},
		Row{Instrument: "ZZZ", Price: 1, Quantity: 1},
		Row{Instrument: "AAPL", Price: 1, Quantity: 1},
	)
	s, _ := DefaultRegistry().Scenario("Interest Rates Rise")
	res, err := Evaluate(p, s)
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range p.Instruments() {
		if res.Rows[i].Instrument != id {
			t.Errorf("row %d = %q, want %q", i, res.Rows[i].Instrument, id)
		}
	}
}

func TestEvaluate_MissingColumns(t *testing.T) {
	p := NewPortfolio([]string{"Instrument", "Qty"}, Row{Instrument: "AAPL"})

	res, err := Evaluate(p, SpecifiedShocks{})
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("Evaluate() error = %v, want *MissingColumnError", err)
	}
	if len(mce.Columns) != 2 || mce.Columns[0] != "Price" || mce.Columns[1] != "Quantity" {
		t.Errorf("missing = %v, want [Price Quantity]", mce.Columns)
	}
	if res.Rows != nil {
		t.Errorf("got a result table on error: %+v", res)
	}
}

func TestResult_Summary(t *testing.T) {
	res := Result{Rows: []Row{
		{Instrument: "A", Price: 10, Quantity: 10, PnL: -20},
		{Instrument: "B", Price: 5, Quantity: -20, PnL: 30},
		{Instrument: "C", Price: 1, Quantity: 100, PnL: -50},
		{Instrument: "D", Price: 1, Quantity: 1, PnL: 0},
	}, Total: -40}

	if w, ok := res.Worst(); !ok || w.Instrument != "C" {
		t.Errorf("Worst() = %v, %v, want C", w.Instrument, ok)
	}
	if got := res.Losers(); got != 2 {
		t.Errorf("Losers() = %d, want 2", got)
	}
	if got := res.Gainers(); got != 1 {
		t.Errorf("Gainers() = %d, want 1", got)
	}
	if got := res.GrossExposure(); got != 301 {
		t.Errorf("GrossExposure() = %v, want 301", got)
	}
	if got, want := res.Impact(), -40.0/301; got != want {
		t.Errorf("Impact() = %v, want %v", got, want)
	}

	var empty Result
	if _, ok := empty.Worst(); ok {
		t.Error("Worst() on empty result should be false")
	}
	if empty.Impact() != 0 {
		t.Error("Impact() on empty result should be 0")
	}
}

func TestEvaluate_NonFinite(t *testing.T) {
	tests := []struct {
		name   string
		row    Row
		column string
	}{
		{"NaN price", Row{Instrument: "AAPL", Price: math.NaN(), Quantity: 10}, ColPrice},
		{"infinite quantity", Row{Instrument: "AAPL", Price: 1, Quantity: math.Inf(-1)}, ColQuantity},
		// (5e307 - 1e308) * 10 overflows
		{"overflow", Row{Instrument: "AAPL", Price: 1e308, Quantity: 10}, ColPnL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPortfolio([]string{"Instrument", "Price", "Quantity"}, tt.row)
			res, err := Evaluate(p, NewSpecifiedShocks(map[string]float64{"AAPL": -0.5}))
			var nfe *NonFiniteError
			if !errors.As(err, &nfe) {
				t.Fatalf("Evaluate() error = %v, want *NonFiniteError", err)
			}
			if nfe.Instrument != "AAPL" || nfe.Column != tt.column {
				t.Errorf("error = %+v, want AAPL %s", nfe, tt.column)
			}
			if res.Rows != nil {
				t.Errorf("got a result table on error: %+v", res)
			}
		})
	}
}
