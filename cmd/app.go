// Package cmd implements the pst command line: stress test a portfolio
// spreadsheet, list the named scenarios and serve the web tool.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/etnz/stress"
	"github.com/etnz/stress/logger"
)

// Commands lists the pst subcommands, with their group.
var Commands = []struct {
	Command subcommands.Command
	Group   string
}{
	{&runCmd{}, "stress"},
	{&explainCmd{}, "stress"},
	{&scenariosCmd{}, "stress"},
	{&serveCmd{}, "web"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var scenariosFile = flag.String("scenarios-file", "", "Path to a YAML or JSON file of named scenarios. Defaults to the built-in scenarios.")
var scenariosPath = flag.String("scenarios-path", "", "JSONPath of the scenarios in a JSON scenarios file. Defaults to $.scenarios.")
var logLevel = flag.String("log-level", "", "Log level: debug, info, warn or error.")

// LoadRegistry loads the named scenarios selected by the global flags.
func LoadRegistry() (*stress.Registry, error) {
	reg, err := stress.LoadRegistry(*scenariosFile, *scenariosPath)
	if err != nil {
		return nil, fmt.Errorf("loading scenarios: %w", err)
	}
	return reg, nil
}

// newLogger returns the console logger of the commands. It is quiet unless
// -log-level says otherwise.
func newLogger() zerolog.Logger {
	level := *logLevel
	if level == "" {
		level = "warn"
	}
	return logger.New(logger.Config{Level: level, Pretty: true})
}

// printMarkdown renders markdown for the terminal, or prints it as is if it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// stdout receives the rendered markdown.
var stdout io.Writer = os.Stdout
