package stress

import (
	"fmt"
	"maps"
	"math"
	"strings"
	"time"
)

// Kind identifies one of the four scenario variants.
type Kind int

const (
	Specified Kind = iota
	DateRange
	Implied
	Named
)

var kindNames = [...]struct{ short, label string }{
	Specified: {"specified", "Specified Shocks Scenario"},
	DateRange: {"date-range", "Date Range Scenario"},
	Implied:   {"implied", "Implied Shocks Scenario"},
	Named:     {"named", "Named Scenario"},
}

// Kinds returns all the scenario kinds, in selector order.
func Kinds() []Kind { return []Kind{Specified, DateRange, Implied, Named} }

func (k Kind) valid() bool { return k >= Specified && k <= Named }

// String returns the short name of the kind, as used on the command line.
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k].short
}

// Label returns the human readable name of the kind.
func (k Kind) Label() string {
	if !k.valid() {
		return k.String()
	}
	return kindNames[k].label
}

// ParseKind parses a short name or a label into a Kind. Case is ignored.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds() {
		if strings.EqualFold(s, kindNames[k].short) || strings.EqualFold(s, kindNames[k].label) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown scenario kind %q", s)
}

// Input bounds, applied at the boundary where users enter values.
const (
	MinShock = -1.0
	MaxShock = 1.0

	MinMultiplier     = 0.1
	MaxMultiplier     = 5.0
	DefaultMultiplier = 2.0
	MultiplierStep    = 0.1
)

// ClampShock bounds a user supplied shock to [MinShock, MaxShock]. NaN becomes 0.
func ClampShock(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, MinShock), MaxShock)
}

// ClampMultiplier bounds a volatility multiplier to [MinMultiplier, MaxMultiplier].
// NaN becomes DefaultMultiplier.
func ClampMultiplier(m float64) float64 {
	if math.IsNaN(m) {
		return DefaultMultiplier
	}
	return min(max(m, MinMultiplier), MaxMultiplier)
}

// Scenario derives one shock per portfolio row.
//
// Shocks must be pure: the same portfolio always yields the same shocks, and
// the portfolio is never modified.
type Scenario interface {
	Kind() Kind
	// Name is a human readable description of the scenario.
	Name() string
	Shocks(p Portfolio) ([]float64, error)
}

// SpecifiedShocks assigns a user supplied shock to each instrument.
// Its zero value is ready to use and shocks every row by 0.
type SpecifiedShocks struct {
	byInstrument map[string]float64
}

// NewSpecifiedShocks creates specified shocks from a map of instrument to
// shock. Values are clamped to [MinShock, MaxShock].
func NewSpecifiedShocks(shocks map[string]float64) SpecifiedShocks {
	var s SpecifiedShocks
	for id, v := range shocks {
		s = s.With(id, v)
	}
	return s
}

// With returns a copy of s with the shock of 'instrument' set to the clamped value v.
func (s SpecifiedShocks) With(instrument string, v float64) SpecifiedShocks {
	m := maps.Clone(s.byInstrument)
	if m == nil {
		m = make(map[string]float64)
	}
	m[instrument] = ClampShock(v)
	return SpecifiedShocks{byInstrument: m}
}

// Shock returns the shock of an instrument, 0 if none was given.
func (s SpecifiedShocks) Shock(instrument string) float64 { return s.byInstrument[instrument] }

func (SpecifiedShocks) Kind() Kind   { return Specified }
func (SpecifiedShocks) Name() string { return Specified.Label() }

func (s SpecifiedShocks) Shocks(p Portfolio) ([]float64, error) {
	shocks := make([]float64, p.Len())
	for i, r := range p.rows {
		shocks[i] = s.byInstrument[r.Instrument]
	}
	return shocks, nil
}

// ImpliedShocks derives an adverse shock from each instrument's volatility:
// shock = -volatility * multiplier.
type ImpliedShocks struct {
	multiplier float64
}

// NewImpliedShocks creates an implied scenario with the multiplier clamped to
// [MinMultiplier, MaxMultiplier].
func NewImpliedShocks(multiplier float64) ImpliedShocks {
	return ImpliedShocks{multiplier: ClampMultiplier(multiplier)}
}

// Multiplier returns the volatility multiplier.
func (s ImpliedShocks) Multiplier() float64 { return s.multiplier }

func (ImpliedShocks) Kind() Kind { return Implied }
func (s ImpliedShocks) Name() string {
	return fmt.Sprintf("%s (x%.1f)", Implied.Label(), s.multiplier)
}

// Shocks requires a Volatility column and returns a *MissingColumnError otherwise.
func (s ImpliedShocks) Shocks(p Portfolio) ([]float64, error) {
	if !p.HasColumn(ColVolatility) {
		return nil, &MissingColumnError{Columns: []string{ColVolatility}}
	}
	shocks := make([]float64, p.Len())
	for i, r := range p.rows {
		shocks[i] = -r.Volatility * s.multiplier
	}
	return shocks, nil
}

// DateRangeShocks would derive shocks from historical prices between From and To.
// There is no historical price source, so it always fails with an
// *UnsupportedScenarioError.
type DateRangeShocks struct {
	From, To time.Time
}

func (DateRangeShocks) Kind() Kind { return DateRange }
func (s DateRangeShocks) Name() string {
	if s.From.IsZero() && s.To.IsZero() {
		return DateRange.Label()
	}
	return fmt.Sprintf("%s (%s to %s)", DateRange.Label(), s.From.Format(time.DateOnly), s.To.Format(time.DateOnly))
}

func (DateRangeShocks) Shocks(Portfolio) ([]float64, error) {
	return nil, &UnsupportedScenarioError{
		Kind:   DateRange,
		Reason: "this scenario requires historical prices, which would normally be sourced from a database or API",
	}
}

// NamedScenario applies a predefined shock to the instruments it knows about.
// Instruments it does not know are left unshocked.
type NamedScenario struct {
	name   string
	shocks map[string]float64
}

func (NamedScenario) Kind() Kind     { return Named }
func (s NamedScenario) Name() string { return s.name }

// Shock returns the shock of an instrument and whether the scenario defines it.
func (s NamedScenario) Shock(instrument string) (float64, bool) {
	v, ok := s.shocks[instrument]
	return v, ok
}

// Instruments returns the instruments the scenario shocks, sorted.
func (s NamedScenario) Instruments() []string {
	return sortedKeys(s.shocks)
}

func (s NamedScenario) Shocks(p Portfolio) ([]float64, error) {
	shocks := make([]float64, p.Len())
	for i, r := range p.rows {
		shocks[i] = s.shocks[r.Instrument] // 0 when absent
	}
	return shocks, nil
}
