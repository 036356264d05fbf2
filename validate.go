package stress

import "math"

// RequiredColumns are the columns every portfolio must have, whatever the scenario.
var RequiredColumns = []string{ColInstrument, ColPrice, ColQuantity}

// Validate checks that p has all the required columns, and that its
// numbers are finite.
//
// It returns a *MissingColumnError listing every missing column, or a
// *NonFiniteError for the first NaN or infinity. The Volatility column is
// not required here: only the implied scenario needs it and it is checked
// when that scenario is chosen.
func Validate(p Portfolio) error {
	var missing []string
	for _, c := range RequiredColumns {
		if !p.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	for _, r := range p.rows {
		for _, c := range []struct {
			name  string
			value float64
		}{{ColPrice, r.Price}, {ColQuantity, r.Quantity}, {ColVolatility, r.Volatility}} {
			if err := checkFinite(r.Instrument, c.name, c.value); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkFinite returns a *NonFiniteError if v is a NaN or an infinity.
func checkFinite(instrument, column string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NonFiniteError{Instrument: instrument, Column: column, Value: v}
	}
	return nil
}
