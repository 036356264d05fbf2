package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/stress"
	"github.com/etnz/stress/docs"
)

// Completion returns the shell completion of pst, for the global flags and
// every subcommand with its flags.
//
// A main package calls complete.Complete("pst", Completion()) before parsing flags. It
// exits when the shell asks for completions, see 'pst topic readme'.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(f)
		sub := &complete.Command{Flags: flagPredictors(f)}
		if c.Command.Name() == "topic" {
			if topics, err := docs.GetAllTopics(); err == nil {
				sub.Args = predict.Set(append(topics, "readme"))
			}
		}
		root.Sub[c.Command.Name()] = sub
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

// flagPredictors predicts flag values from their names.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	kinds := make([]string, 0, len(stress.Kinds()))
	for _, k := range stress.Kinds() {
		kinds = append(kinds, k.String())
	}

	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "f", "o":
			flags[fl.Name] = predict.Or(predict.Files("*.xlsx"), predict.Files("*.csv"))
		case "scenarios-file":
			flags[fl.Name] = predict.Or(predict.Files("*.yaml"), predict.Files("*.yml"), predict.Files("*.json"))
		case "s":
			flags[fl.Name] = predict.Set(kinds)
		case "n":
			flags[fl.Name] = predict.Set(stress.DefaultRegistry().Names())
		case "log-level":
			flags[fl.Name] = predict.Set{"debug", "info", "warn", "error"}
		default:
			if isBool(fl) {
				flags[fl.Name] = predict.Nothing
			} else {
				flags[fl.Name] = predict.Something
			}
		}
	})
	return flags
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
