package stress

import "fmt"

// Percent is a percentage, 100 meaning 100%.
type Percent float64

// ShockPercent converts a fractional shock into a Percent.
func ShockPercent(shock float64) Percent { return Percent(shock * 100) }

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
