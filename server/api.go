package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/etnz/stress"
)

// apiRow is a portfolio row of an API request. Volatility is optional, the
// Volatility column is present if any row has one.
type apiRow struct {
	Instrument string   `json:"instrument"`
	Price      float64  `json:"price"`
	Quantity   float64  `json:"quantity"`
	Volatility *float64 `json:"volatility,omitempty"`
}

type apiScenario struct {
	Kind       string             `json:"kind"`
	Name       string             `json:"name,omitempty"`
	Multiplier *float64           `json:"multiplier,omitempty"`
	Shocks     map[string]float64 `json:"shocks,omitempty"`
	From       string             `json:"from,omitempty"`
	To         string             `json:"to,omitempty"`
}

type evaluateRequest struct {
	Portfolio []apiRow    `json:"portfolio"`
	Scenario  apiScenario `json:"scenario"`
}

type namedScenario struct {
	Name   string             `json:"name"`
	Shocks map[string]float64 `json:"shocks"`
}

// Error kinds of the JSON API.
const (
	errInvalidRequest      = "invalid_request"
	errMissingColumn       = "missing_column"
	errUnsupportedScenario = "unsupported_scenario"
	errUnknownScenario     = "unknown_scenario"
	errNonFinite           = "non_finite"
	errInternal            = "internal"
)

func (s *Server) handleAPIScenarios(w http.ResponseWriter, r *http.Request) {
	list := make([]namedScenario, 0, s.registry.Len())
	for _, sc := range s.registry.Scenarios() {
		shocks := make(map[string]float64)
		for _, id := range sc.Instruments() {
			shocks[id], _ = sc.Shock(id)
		}
		list = append(list, namedScenario{Name: sc.Name(), Shocks: shocks})
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAPIEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUpload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	portfolio, err := req.portfolio()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	sel, err := req.Scenario.selection()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}

	res, err := evaluate(portfolio, sel, s.registry)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, errorKind(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func evaluate(p stress.Portfolio, sel stress.Selection, reg *stress.Registry) (stress.Result, error) {
	scenario, err := sel.Scenario(reg)
	if err != nil {
		return stress.Result{}, err
	}
	return stress.Evaluate(p, scenario)
}

// errorKind classifies evaluation errors for API clients.
func errorKind(err error) string {
	var (
		missing     *stress.MissingColumnError
		unsupported *stress.UnsupportedScenarioError
		unknown     *stress.UnknownScenarioError
		nonFinite   *stress.NonFiniteError
	)
	switch {
	case errors.As(err, &missing):
		return errMissingColumn
	case errors.As(err, &unsupported):
		return errUnsupportedScenario
	case errors.As(err, &unknown):
		return errUnknownScenario
	case errors.As(err, &nonFinite):
		return errNonFinite
	}
	return errInvalidRequest
}

func (req evaluateRequest) portfolio() (stress.Portfolio, error) {
	columns := []string{stress.ColInstrument, stress.ColPrice, stress.ColQuantity}
	rows := make([]stress.Row, len(req.Portfolio))
	hasVolatility := false
	for i, r := range req.Portfolio {
		if r.Instrument == "" {
			return stress.Portfolio{}, fmt.Errorf("row %d: instrument is empty", i)
		}
		if r.Price < 0 || math.IsNaN(r.Price) {
			return stress.Portfolio{}, fmt.Errorf("row %d: invalid price %v", i, r.Price)
		}
		rows[i] = stress.Row{Instrument: r.Instrument, Price: r.Price, Quantity: r.Quantity}
		if r.Volatility != nil {
			if *r.Volatility < 0 {
				return stress.Portfolio{}, fmt.Errorf("row %d: invalid volatility %v", i, *r.Volatility)
			}
			rows[i].Volatility = *r.Volatility
			hasVolatility = true
		}
	}
	if hasVolatility {
		columns = append(columns, stress.ColVolatility)
	}
	return stress.NewPortfolio(columns, rows...), nil
}

func (s apiScenario) selection() (stress.Selection, error) {
	kind, err := stress.ParseKind(s.Kind)
	if err != nil {
		return stress.Selection{}, err
	}
	sel := stress.Selection{
		Kind:       kind,
		Name:       s.Name,
		Multiplier: stress.DefaultMultiplier,
		Shocks:     s.Shocks,
	}
	if s.Multiplier != nil {
		sel.Multiplier = stress.ClampMultiplier(*s.Multiplier)
	}
	if sel.From, err = parseDate(s.From); err != nil {
		return sel, err
	}
	if sel.To, err = parseDate(s.To); err != nil {
		return sel, err
	}
	return sel, nil
}
