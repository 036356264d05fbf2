package stress

import "fmt"

// Stage is the progress of an Evaluation.
type Stage int

const (
	AwaitingFile Stage = iota
	Validated
	ScenarioChosen
	ShockApplied
	ResultsReady
	Halted
)

func (s Stage) String() string {
	switch s {
	case AwaitingFile:
		return "awaiting-file"
	case Validated:
		return "validated"
	case ScenarioChosen:
		return "scenario-chosen"
	case ShockApplied:
		return "shock-applied"
	case ResultsReady:
		return "results-ready"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Evaluation follows one user interaction from the upload to the results:
//
//	AwaitingFile -> Validated -> ScenarioChosen -> ShockApplied -> ResultsReady
//
// Any error moves it to Halted, which is terminal: there is no retry, the
// user starts a new Evaluation instead.
type Evaluation struct {
	stage     Stage
	portfolio Portfolio
	scenario  Scenario
	result    Result
	err       error
}

// NewEvaluation returns an evaluation awaiting a portfolio.
func NewEvaluation() *Evaluation { return &Evaluation{} }

// Stage returns the current stage.
func (e *Evaluation) Stage() Stage { return e.stage }

// Err returns the error that halted the evaluation, if any.
func (e *Evaluation) Err() error { return e.err }

// Result returns the valuation, and false unless the results are ready.
func (e *Evaluation) Result() (Result, bool) {
	if e.stage != ResultsReady {
		return Result{}, false
	}
	return e.result, true
}

func (e *Evaluation) halt(err error) error {
	e.stage = Halted
	e.err = err
	e.result = Result{}
	return err
}

func (e *Evaluation) expect(want Stage) error {
	if e.stage == Halted {
		return e.err
	}
	if e.stage != want {
		return fmt.Errorf("%w: at %s, want %s", ErrInvalidStage, e.stage, want)
	}
	return nil
}

// Load validates the uploaded portfolio.
func (e *Evaluation) Load(p Portfolio) error {
	if err := e.expect(AwaitingFile); err != nil {
		return err
	}
	if err := Validate(p); err != nil {
		return e.halt(err)
	}
	e.portfolio = p
	e.stage = Validated
	return nil
}

// Choose selects the scenario and checks that it applies to the portfolio:
// the implied scenario halts here without a Volatility column, and a date
// range scenario always halts.
func (e *Evaluation) Choose(s Scenario) error {
	if err := e.expect(Validated); err != nil {
		return err
	}
	if _, err := s.Shocks(e.portfolio); err != nil {
		return e.halt(err)
	}
	if s.Kind() == DateRange {
		return e.halt(&UnsupportedScenarioError{Kind: DateRange, Reason: "no historical price source"})
	}
	e.scenario = s
	e.stage = ScenarioChosen
	return nil
}

// Run applies the chosen scenario and values the portfolio.
func (e *Evaluation) Run() (Result, error) {
	if err := e.expect(ScenarioChosen); err != nil {
		return Result{}, err
	}
	shocked, err := ApplyScenario(e.portfolio, e.scenario)
	if err != nil {
		return Result{}, e.halt(err)
	}
	e.stage = ShockApplied

	res := ComputePnL(shocked)
	if err := res.checkFinite(); err != nil {
		return Result{}, e.halt(err)
	}
	res.Scenario = e.scenario.Name()
	e.result = res
	e.stage = ResultsReady
	return e.result, nil
}

// Evaluate runs a full evaluation of p under s.
func Evaluate(p Portfolio, s Scenario) (Result, error) {
	e := NewEvaluation()
	if err := e.Load(p); err != nil {
		return Result{}, err
	}
	if err := e.Choose(s); err != nil {
		return Result{}, err
	}
	return e.Run()
}
