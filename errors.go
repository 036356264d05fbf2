package stress

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStage is returned when an Evaluation step is called out of order.
var ErrInvalidStage = errors.New("invalid evaluation stage")

// MissingColumnError reports required columns absent from the portfolio table.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("your file must contain the %s column(s)", strings.Join(quoted, ", "))
}

// UnsupportedScenarioError reports a scenario kind that cannot be evaluated.
type UnsupportedScenarioError struct {
	Kind   Kind
	Reason string
}

func (e *UnsupportedScenarioError) Error() string {
	return fmt.Sprintf("%s is not supported: %s", e.Kind.Label(), e.Reason)
}

// UnknownScenarioError reports a named scenario missing from the registry.
type UnknownScenarioError struct {
	Name string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown named scenario %q", e.Name)
}

// NonFiniteError reports a value that is not a finite number: a NaN or an
// infinity given as input, or a valuation that overflows.
type NonFiniteError struct {
	Instrument string // empty for the total
	Column     string
	Value      float64
}

func (e *NonFiniteError) Error() string {
	if e.Instrument == "" {
		return fmt.Sprintf("%s is not a finite number (%v)", e.Column, e.Value)
	}
	return fmt.Sprintf("%s of %s is not a finite number (%v)", e.Column, e.Instrument, e.Value)
}

// CellError reports a malformed cell in the source table.
// Row is 1-based and counts the header row, like a spreadsheet does.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
