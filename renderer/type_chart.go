package renderer

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/etnz/stress"
)

// ChartWidth is the number of cells on each side of the chart axis.
const ChartWidth = 20

const (
	chartBlock = "█"
	chartAxis  = "│"
)

// ChartBar is the P&L bar of one instrument. Losses grow left of the axis and
// gains right of it, the longest bar is the largest absolute P&L.
type ChartBar struct {
	Label string         `json:"label"` // instrument, padded to the longest one
	Bar   string         `json:"bar"`
	PnL   stress.Money   `json:"pnl"`
	Shock stress.Percent `json:"shock"`
}

// NewChart creates the P&L bars of a result, in row order. Bars have 'width'
// cells on each side of the axis. There is no chart when no P&L moved.
func NewChart(res stress.Result, currency string, width int) []ChartBar {
	if len(res.Rows) == 0 || width <= 0 {
		return nil
	}

	var largest float64
	labelWidth := 0
	for _, r := range res.Rows {
		if finite(r.PnL) {
			largest = max(largest, math.Abs(r.PnL))
		}
		labelWidth = max(labelWidth, utf8.RuneCountInString(r.Instrument))
	}
	if largest == 0 {
		return nil
	}

	bars := make([]ChartBar, 0, len(res.Rows))
	for _, r := range res.Rows {
		n := 0
		if finite(r.PnL) {
			n = int(math.Round(math.Abs(r.PnL) / largest * float64(width)))
			// every non zero P&L is visible
			if n == 0 && r.PnL != 0 {
				n = 1
			}
		}
		left, right := strings.Repeat(" ", width), strings.Repeat(" ", width)
		if r.PnL < 0 {
			left = strings.Repeat(" ", width-n) + strings.Repeat(chartBlock, n)
		} else {
			right = strings.Repeat(chartBlock, n) + strings.Repeat(" ", width-n)
		}
		bars = append(bars, ChartBar{
			Label: fmt.Sprintf("%-*s", labelWidth, r.Instrument),
			Bar:   left + chartAxis + right,
			PnL:   stress.M(r.PnL, currency),
			Shock: stress.ShockPercent(r.Shock),
		})
	}
	return bars
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
