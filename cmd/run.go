package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

// runCmd evaluates a portfolio under a scenario.
type runCmd struct {
	scenarioFlags
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "stress test a portfolio spreadsheet" }
func (*runCmd) Usage() string {
	return `pst run -f <portfolio.xlsx> [-s <kind>] [-n <name>] [-m <multiplier>] [-shock ID=SHOCK ...] [-o <results.xlsx>]

  Applies a scenario to every position of the portfolio and prints the
  stressed prices and the profit and loss of each position.

  Scenario kinds:
    specified    one -shock per instrument, others are not shocked
    implied      shock = -volatility x multiplier (needs a Volatility column)
    named        a named scenario, see 'pst scenarios'
    date-range   not supported yet

`
}

func (c *runCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	md, _, status := c.evaluate()
	if status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
