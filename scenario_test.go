package stress

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestImpliedShocks(t *testing.T) {
	shocks, err := NewImpliedShocks(2.0).Shocks(withVolatility(0.2, 0.1))
	if err != nil {
		t.Fatalf("Shocks() error = %v", err)
	}
	if shocks[0] != -0.4 || shocks[1] != -0.2 {
		t.Errorf("Shocks() = %v, want [-0.4 -0.2]", shocks)
	}
}

func TestImpliedShocks_NonPositive(t *testing.T) {
	for _, vol := range []float64{0, 0.01, 0.3, 1, 7.5} {
		for _, m := range []float64{-3, 0, 0.1, 1.7, 5, 12} {
			shocks, err := NewImpliedShocks(m).Shocks(withVolatility(vol, vol/2))
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range shocks {
				if s > 0 {
					t.Errorf("vol=%v m=%v: shock %v is positive", vol, m, s)
				}
			}
		}
	}
}

func TestImpliedShocks_RequiresVolatility(t *testing.T) {
	_, err := NewImpliedShocks(2).Shocks(aaplMsft())
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("Shocks() error = %v, want *MissingColumnError", err)
	}
	if len(mce.Columns) != 1 || mce.Columns[0] != ColVolatility {
		t.Errorf("missing = %v, want [Volatility]", mce.Columns)
	}
}

func TestClampMultiplier(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, MinMultiplier},
		{-1, MinMultiplier},
		{0.1, 0.1},
		{2.5, 2.5},
		{5, 5},
		{50, MaxMultiplier},
		{math.NaN(), DefaultMultiplier},
	}
	for _, tt := range tests {
		if got := ClampMultiplier(tt.in); got != tt.want {
			t.Errorf("ClampMultiplier(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := NewImpliedShocks(9).Multiplier(); got != MaxMultiplier {
		t.Errorf("NewImpliedShocks(9).Multiplier() = %v", got)
	}
}

func TestSpecifiedShocks(t *testing.T) {
	s := NewSpecifiedShocks(map[string]float64{"AAPL": -0.25, "MSFT": 3, "TSLA": -0.5})
	shocks, err := s.Shocks(aaplMsft())
	if err != nil {
		t.Fatal(err)
	}
	// MSFT is clamped; TSLA is not in the portfolio and ignored.
	if shocks[0] != -0.25 || shocks[1] != 1 {
		t.Errorf("Shocks() = %v, want [-0.25 1]", shocks)
	}

	// rows without a value default to 0
	var zero SpecifiedShocks
	shocks, _ = zero.Shocks(aaplMsft())
	if shocks[0] != 0 || shocks[1] != 0 {
		t.Errorf("zero value Shocks() = %v, want [0 0]", shocks)
	}

	// With does not modify the receiver.
	t2 := s.With("AAPL", -2)
	if s.Shock("AAPL") != -0.25 || t2.Shock("AAPL") != -1 {
		t.Errorf("With() = %v, receiver = %v", t2.Shock("AAPL"), s.Shock("AAPL"))
	}
}

func TestClampShock(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-1.5, -1}, {-1, -1}, {-0.3, -0.3}, {0, 0}, {0.99, 0.99}, {1, 1}, {42, 1}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampShock(tt.in); got != tt.want {
			t.Errorf("ClampShock(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDateRangeShocks_AlwaysUnsupported(t *testing.T) {
	portfolios := []Portfolio{
		aaplMsft(),
		withVolatility(0.1, 0.1),
		NewPortfolio([]string{"Instrument", "Price", "Quantity"}),
	}
	s := DateRangeShocks{From: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)}
	for _, p := range portfolios {
		res, err := Evaluate(p, s)
		var use *UnsupportedScenarioError
		if !errors.As(err, &use) {
			t.Fatalf("Evaluate() error = %v, want *UnsupportedScenarioError", err)
		}
		if use.Kind != DateRange {
			t.Errorf("Kind = %v, want date-range", use.Kind)
		}
		if res.Rows != nil {
			t.Errorf("got results on a date range scenario: %+v", res)
		}
	}
	if got, want := s.Name(), "Date Range Scenario (2020-02-01 to 2020-04-01)"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNamedScenario_UnknownInstrumentIsUnshocked(t *testing.T) {
	p := NewPortfolio([]string{"Instrument", "Price", "Quantity"},
		Row{Instrument: "AAPL", Price: 100, Quantity: 10},
		Row{Instrument: "GOOG", Price: 150, Quantity: -4},
		Row{Instrument: "aapl", Price: 1, Quantity: 1}, // lookup is exact
	)
	for _, s := range DefaultRegistry().Scenarios() {
		res, err := Evaluate(p, s)
		if err != nil {
			t.Fatalf("%s: %v", s.Name(), err)
		}
		for _, r := range res.Rows[1:] {
			if r.Shock != 0 || r.PnL != 0 {
				t.Errorf("%s: %s shock = %v, pnl = %v, want 0", s.Name(), r.Instrument, r.Shock, r.PnL)
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"specified", Specified},
		{"Specified Shocks Scenario", Specified},
		{"DATE-RANGE", DateRange},
		{" implied ", Implied},
		{"Named Scenario", Named},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseKind("historical"); err == nil {
		t.Error("ParseKind(historical) should fail")
	}
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) round trip = %v, %v", k.String(), got, err)
		}
	}
}
