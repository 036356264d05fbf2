package renderer

import (
	"github.com/etnz/stress"
)

// Report is a struct to represent a stress result in json.
// Amounts are Money and shocks Percent so that they already contain basic
// renderers (SignedString etc.).
type Report struct {
	// Scenario is the name of the evaluated scenario.
	Scenario string `json:"scenario"`
	// Total is the total stress P&L.
	Total stress.Money `json:"total"`
	// GrossExposure is the sum of the absolute market values before shock.
	GrossExposure stress.Money `json:"grossExposure"`
	// Impact is the total P&L relative to the gross exposure.
	Impact stress.Percent `json:"impact"`
	// Worst is the instrument with the lowest P&L, empty if there is no position.
	Worst    string       `json:"worst,omitempty"`
	WorstPnL stress.Money `json:"worstPnL"`

	Positions int `json:"positions"`
	Losers    int `json:"losers"`
	Gainers   int `json:"gainers"`

	Chart []ChartBar  `json:"chart,omitempty"`
	Rows  []ReportRow `json:"rows"`
}

// ReportRow is a single shocked position.
type ReportRow struct {
	Instrument   string         `json:"instrument"`
	Price        stress.Money   `json:"price"`
	ShockedPrice stress.Money   `json:"shockedPrice"`
	Shock        stress.Percent `json:"shock"`
	Quantity     float64        `json:"quantity"`
	PnL          stress.Money   `json:"pnl"`
}

// NewReport creates a Report from a stress result, amounts are in 'currency'.
func NewReport(res stress.Result, currency string) *Report {
	r := &Report{
		Scenario:      res.Scenario,
		Total:         stress.M(res.Total, currency),
		GrossExposure: stress.M(res.GrossExposure(), currency),
		Impact:        stress.ShockPercent(res.Impact()),
		Positions:     len(res.Rows),
		Losers:        res.Losers(),
		Gainers:       res.Gainers(),
		Chart:         NewChart(res, currency, ChartWidth),
	}
	if w, ok := res.Worst(); ok && w.PnL < 0 {
		r.Worst = w.Instrument
		r.WorstPnL = stress.M(w.PnL, currency)
	}
	for _, row := range res.Rows {
		r.Rows = append(r.Rows, ReportRow{
			Instrument:   row.Instrument,
			Price:        stress.M(row.Price, currency),
			ShockedPrice: stress.M(row.ShockedPrice, currency),
			Shock:        stress.ShockPercent(row.Shock),
			Quantity:     row.Quantity,
			PnL:          stress.M(row.PnL, currency),
		})
	}
	return r
}

// ResultMarkdown renders a stress result in 'currency' as markdown.
func ResultMarkdown(res stress.Result, currency string) string {
	return RenderReport(NewReport(res, currency))
}
