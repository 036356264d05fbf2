package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"google.golang.org/genai"
)

const explainInstruction = `You are a risk analyst. You are given the markdown report of a portfolio
stress test: the scenario, the shocked price and the profit and loss of each
position. Explain in a few short paragraphs which positions drive the loss,
how concentrated the risk is, and what the scenario says about the portfolio.
Do not invent figures that are not in the report. Answer in markdown.`

// explainCmd evaluates a portfolio, then asks a Gemini model to comment on
// the report.
type explainCmd struct {
	scenarioFlags
	model string
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "stress test a portfolio and explain the results with Gemini" }
func (*explainCmd) Usage() string {
	return `pst explain -f <portfolio.xlsx> [run flags] [-model <model>]

  Runs the same evaluation as 'pst run', prints the report, then prints the
  comment of a Gemini model on it. The API key is read from GEMINI_API_KEY
  or GOOGLE_API_KEY.
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	c.scenarioFlags.SetFlags(f)
	f.StringVar(&c.model, "model", "gemini-2.5-flash", "Gemini model.")
}

func (c *explainCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	md, _, status := c.evaluate()
	if status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(md)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(md), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(explainInstruction, genai.RoleUser),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating the explanation:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(resp.Text())
	return subcommands.ExitSuccess
}
