// Package stress provides the shock engine of the portfolio stress tester.
//
// A stress test takes a portfolio table (one row per holding, with its
// instrument, price and quantity), chooses exactly one scenario and derives a
// fractional price shock for every row. The shocked table is then valued:
//
//	shocked price = price * (1 + shock)
//	P&L           = (shocked price - price) * quantity
//
// The core functionalities include:
//   - Portfolio: an immutable table of holdings with the set of columns found
//     in the source spreadsheet.
//   - Scenarios: four mutually exclusive ways to derive shocks (specified,
//     implied from volatility, date range and named macro scenarios).
//   - Registry: the named scenarios, loaded from a versionable YAML or JSON
//     document instead of being embedded in logic.
//   - Valuation: pure functions that apply a scenario and compute the P&L,
//     and an Evaluation that tracks the stage of one interaction.
//
// This package serves as the foundational logic for the `pst` command-line
// tool and its single-page web front end.
package stress
