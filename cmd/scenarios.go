package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/stress/renderer"
)

type scenariosCmd struct {
	json bool
}

func (*scenariosCmd) Name() string     { return "scenarios" }
func (*scenariosCmd) Synopsis() string { return "list the named scenarios" }
func (*scenariosCmd) Usage() string {
	return `pst scenarios [-json]

  Lists the named scenarios and the shock of each instrument. Use the global
  -scenarios-file flag to list your own scenarios.
`
}

func (c *scenariosCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the scenarios as JSON.")
}

func (c *scenariosCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	reg, err := LoadRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	list := renderer.NewScenarios(reg)
	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding scenarios: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderScenarios(list))
	return subcommands.ExitSuccess
}
