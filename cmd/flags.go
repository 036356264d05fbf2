package cmd

import (
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"

	"github.com/etnz/stress"
	"github.com/etnz/stress/renderer"
	"github.com/etnz/stress/sheet"
)

// shockFlags collects repeated -shock INSTRUMENT=SHOCK flags.
type shockFlags map[string]float64

func (s *shockFlags) String() string {
	if s == nil || len(*s) == 0 {
		return ""
	}
	var parts []string
	for _, id := range slices.Sorted(maps.Keys(*s)) {
		parts = append(parts, fmt.Sprintf("%s=%g", id, (*s)[id]))
	}
	return strings.Join(parts, ",")
}

func (s *shockFlags) Set(v string) error {
	shocks, err := stress.ParseShocks(v)
	if err != nil {
		return err
	}
	if *s == nil {
		*s = make(shockFlags)
	}
	for id, shock := range shocks {
		(*s)[id] = shock
	}
	return nil
}

// scenarioFlags holds the flags shared by the commands that evaluate a portfolio.
type scenarioFlags struct {
	file       string
	kind       string
	name       string
	multiplier float64
	shocks     shockFlags
	from, to   string
	currency   string
	output     string
	preview    bool
}

func (c *scenarioFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Portfolio spreadsheet (.xlsx or .csv) with Instrument, Price and Quantity columns.")
	f.StringVar(&c.kind, "s", stress.Named.String(), "Scenario kind: specified, date-range, implied or named.")
	f.StringVar(&c.name, "n", "", "Named scenario. Defaults to the first one, see 'pst scenarios'.")
	f.Float64Var(&c.multiplier, "m", stress.DefaultMultiplier, "Volatility multiplier of the implied scenario, from 0.1 to 5.0.")
	f.Var(&c.shocks, "shock", "Shock of an instrument for the specified scenario, like AAPL=-0.2. Can be repeated.")
	f.StringVar(&c.from, "from", "", "Start date (YYYY-MM-DD) of the date-range scenario.")
	f.StringVar(&c.to, "to", "", "End date (YYYY-MM-DD) of the date-range scenario.")
	f.StringVar(&c.currency, "c", money.USD, "Reporting currency.")
	f.StringVar(&c.output, "o", "", "Write the results to this .xlsx or .csv file.")
	f.BoolVar(&c.preview, "preview", false, "Print the first rows of the portfolio before the results.")
}

// selection validates the flags and returns the selected scenario.
func (c *scenarioFlags) selection() (stress.Selection, error) {
	if c.file == "" {
		return stress.Selection{}, errors.New("missing portfolio file, use -f")
	}
	if money.GetCurrency(strings.ToUpper(c.currency)) == nil {
		return stress.Selection{}, fmt.Errorf("unknown currency %q", c.currency)
	}
	kind, err := stress.ParseKind(c.kind)
	if err != nil {
		return stress.Selection{}, err
	}
	sel := stress.Selection{
		Kind:       kind,
		Name:       c.name,
		Multiplier: stress.ClampMultiplier(c.multiplier),
		Shocks:     c.shocks,
	}
	if sel.From, err = parseDate(c.from); err != nil {
		return sel, err
	}
	if sel.To, err = parseDate(c.to); err != nil {
		return sel, err
	}
	if !sel.From.IsZero() && !sel.To.IsZero() && sel.To.Before(sel.From) {
		return sel, fmt.Errorf("-to %s is before -from %s", c.to, c.from)
	}
	return sel, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// evaluate reads the portfolio, evaluates it and returns the markdown report.
// The preview, if any, is printed as soon as the portfolio is read. Errors are
// reported on stderr.
func (c *scenarioFlags) evaluate() (string, stress.Result, subcommands.ExitStatus) {
	log := newLogger()

	sel, err := c.selection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return "", stress.Result{}, subcommands.ExitUsageError
	}

	reg, err := LoadRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return "", stress.Result{}, subcommands.ExitFailure
	}

	p, err := sheet.ReadFile(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading portfolio %q: %v\n", c.file, err)
		return "", stress.Result{}, subcommands.ExitFailure
	}
	log.Debug().Str("file", c.file).Int("rows", p.Len()).Strs("columns", p.Columns()).Msg("Portfolio loaded")

	if c.preview {
		printMarkdown(renderer.RenderPreview(renderer.NewPreview(p, renderer.PreviewRows)))
	}

	scenario, err := sel.Scenario(reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return "", stress.Result{}, subcommands.ExitFailure
	}

	res, err := stress.Evaluate(p, scenario)
	if err != nil {
		var unsupported *stress.UnsupportedScenarioError
		if errors.As(err, &unsupported) {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return "", stress.Result{}, subcommands.ExitFailure
	}
	log.Debug().Str("scenario", res.Scenario).Float64("total", res.Total).Msg("Portfolio evaluated")

	md := renderer.ResultMarkdown(res, strings.ToUpper(c.currency))

	if c.output != "" {
		if err := writeResult(c.output, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing results to %q: %v\n", c.output, err)
			return "", stress.Result{}, subcommands.ExitFailure
		}
		log.Info().Str("file", c.output).Msg("Results written")
	}
	return md, res, subcommands.ExitSuccess
}

// writeResult writes the result table to a .csv file, or to an .xlsx file
// for any other extension.
func writeResult(name string, res stress.Result) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return sheet.WriteCSV(f, res)
	}
	return sheet.WriteXLSX(f, res)
}
