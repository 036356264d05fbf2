package cmd

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/stress"
)

func parse(t *testing.T, args ...string) *scenarioFlags {
	t.Helper()
	var c scenarioFlags
	f := flag.NewFlagSet("run", flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return &c
}

func TestShockFlags(t *testing.T) {
	c := parse(t, "-shock", "AAPL=-0.2", "-shock", "MSFT=0.1,TSLA=-2")

	assert.Equal(t, shockFlags{"AAPL": -0.2, "MSFT": 0.1, "TSLA": -1}, c.shocks)
	assert.Equal(t, "AAPL=-0.2,MSFT=0.1,TSLA=-1", c.shocks.String())

	var s shockFlags
	assert.Error(t, s.Set("AAPL"))
	assert.Empty(t, s.String())
}

func TestSelection(t *testing.T) {
	c := parse(t, "-f", "p.xlsx", "-s", "implied", "-m", "9")
	sel, err := c.selection()
	require.NoError(t, err)
	assert.Equal(t, stress.Implied, sel.Kind)
	assert.Equal(t, stress.MaxMultiplier, sel.Multiplier)

	c = parse(t, "-f", "p.csv", "-s", "date-range", "-from", "2020-01-01", "-to", "2020-06-01")
	sel, err = c.selection()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), sel.To)

	c = parse(t, "-f", "p.csv")
	sel, err = c.selection()
	require.NoError(t, err)
	assert.Equal(t, stress.Named, sel.Kind, "default kind")
	assert.Equal(t, stress.DefaultMultiplier, sel.Multiplier)
}

func TestSelection_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no file", []string{"-s", "named"}},
		{"bad kind", []string{"-f", "p.xlsx", "-s", "worst"}},
		{"bad date", []string{"-f", "p.xlsx", "-s", "date-range", "-from", "01/02/2020"}},
		{"reversed dates", []string{"-f", "p.xlsx", "-from", "2020-06-01", "-to", "2020-01-01"}},
		{"bad currency", []string{"-f", "p.xlsx", "-c", "ABCD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...).selection()
			assert.Error(t, err)
		})
	}
}

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	res := stress.Result{Rows: []stress.Row{{Instrument: "AAPL", Price: 100, Quantity: 10, Shock: -0.5, ShockedPrice: 50, PnL: -500}}, Total: -500}

	csvFile := filepath.Join(dir, "out.csv")
	require.NoError(t, writeResult(csvFile, res))
	data, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	assert.Equal(t, "Instrument,Price,Shocked Price,Shock,Quantity,P&L\nAAPL,100,50,-0.5,10,-500\n", string(data))

	xlsxFile := filepath.Join(dir, "out.xlsx")
	require.NoError(t, writeResult(xlsxFile, res))
	data, err = os.ReadFile(xlsxFile)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]), "xlsx files are zip archives")
}

func TestCompletion(t *testing.T) {
	c := Completion()

	for _, name := range []string{"run", "explain", "scenarios", "serve", "topic", "help"} {
		assert.Contains(t, c.Sub, name)
	}
	assert.Contains(t, c.Flags, "scenarios-file")
	assert.Contains(t, c.Sub["run"].Flags, "shock")
	assert.Contains(t, c.Sub["explain"].Flags, "model")
	assert.ElementsMatch(t, []string{"specified", "date-range", "implied", "named"}, c.Sub["run"].Flags["s"].Predict(""))
	assert.NotNil(t, c.Sub["topic"].Args)
}

func TestEvaluate_PreviewOnFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "p.csv")
	require.NoError(t, os.WriteFile(file, []byte("Instrument,Price\nAAPL,100\n"), 0o644))

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	md, _, status := parse(t, "-f", file, "-preview").evaluate()
	assert.Equal(t, subcommands.ExitFailure, status, "Quantity is missing")
	assert.Empty(t, md)
	assert.Contains(t, out.String(), "Portfolio Preview")
	assert.Contains(t, out.String(), "AAPL")
}
