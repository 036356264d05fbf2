package renderer

import "github.com/etnz/stress"

// PreviewRows is the number of rows shown in a portfolio preview.
const PreviewRows = 5

// Preview holds the first rows of an uploaded portfolio.
type Preview struct {
	HasVolatility bool         `json:"hasVolatility"`
	Shown         int          `json:"shown"`
	Total         int          `json:"total"`
	Rows          []PreviewRow `json:"rows"`
}

// PreviewRow is a raw portfolio row; Price is formatted with 2 decimals.
type PreviewRow struct {
	Instrument string  `json:"instrument"`
	Price      string  `json:"price"`
	Quantity   float64 `json:"quantity"`
	Volatility float64 `json:"volatility"`
}

// NewPreview creates a Preview of the first n rows of p.
func NewPreview(p stress.Portfolio, n int) *Preview {
	head := p.Head(n)
	pv := &Preview{
		HasVolatility: p.HasColumn(stress.ColVolatility),
		Shown:         head.Len(),
		Total:         p.Len(),
	}
	for _, r := range head.Rows() {
		pv.Rows = append(pv.Rows, PreviewRow{
			Instrument: r.Instrument,
			Price:      stress.Price(r.Price),
			Quantity:   r.Quantity,
			Volatility: r.Volatility,
		})
	}
	return pv
}
