package stress

// aaplMsft is the two rows portfolio used in most tests.
func aaplMsft() Portfolio {
	return NewPortfolio([]string{"Instrument", "Price", "Quantity"},
		Row{Instrument: "AAPL", Price: 100, Quantity: 10},
		Row{Instrument: "MSFT", Price: 50, Quantity: 20},
	)
}

// withVolatility returns the aaplMsft portfolio with a Volatility column.
func withVolatility(aapl, msft float64) Portfolio {
	return NewPortfolio([]string{"Instrument", "Price", "Quantity", "Volatility"},
		Row{Instrument: "AAPL", Price: 100, Quantity: 10, Volatility: aapl},
		Row{Instrument: "MSFT", Price: 50, Quantity: 20, Volatility: msft},
	)
}
