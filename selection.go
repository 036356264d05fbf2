package stress

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Selection is a scenario choice with its parameters, as collected by a
// presentation layer (command line flags, web form, JSON request).
//
// Collecting the parameters is the presentation's job; Scenario turns them
// into a pure Scenario.
type Selection struct {
	Kind       Kind
	Name       string             // Named: scenario name, the first one if empty
	Multiplier float64            // Implied: volatility multiplier
	Shocks     map[string]float64 // Specified: shock by instrument
	From, To   time.Time          // DateRange
}

// Scenario returns the scenario selected by s. Named scenarios are looked up
// in reg, or in the DefaultRegistry if reg is nil.
func (s Selection) Scenario(reg *Registry) (Scenario, error) {
	switch s.Kind {
	case Specified:
		return NewSpecifiedShocks(s.Shocks), nil
	case Implied:
		return NewImpliedShocks(s.Multiplier), nil
	case DateRange:
		return DateRangeShocks{From: s.From, To: s.To}, nil
	case Named:
		if reg == nil {
			reg = DefaultRegistry()
		}
		name := s.Name
		if name == "" && reg.Len() > 0 {
			name = reg.Names()[0]
		}
		return reg.Scenario(name)
	}
	return nil, fmt.Errorf("unknown scenario kind %v", s.Kind)
}

// ParseShock parses an "INSTRUMENT=SHOCK" assignment, like "AAPL=-0.2".
// The shock is clamped to [MinShock, MaxShock].
func ParseShock(s string) (instrument string, shock float64, err error) {
	id, value, ok := strings.Cut(s, "=")
	id, value = strings.TrimSpace(id), strings.TrimSpace(value)
	if !ok || id == "" {
		return "", 0, fmt.Errorf("invalid shock %q, want INSTRUMENT=SHOCK", s)
	}
	shock, err = strconv.ParseFloat(value, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid shock %q for %s: %w", value, id, err)
	}
	return id, ClampShock(shock), nil
}

// ParseShocks parses "INSTRUMENT=SHOCK" assignments separated by new lines,
// commas or semicolons. Blank assignments are ignored.
func ParseShocks(s string) (map[string]float64, error) {
	shocks := make(map[string]float64)
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ',' || r == ';' })
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		id, v, err := ParseShock(f)
		if err != nil {
			return nil, err
		}
		shocks[id] = v
	}
	return shocks, nil
}
