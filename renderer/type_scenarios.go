package renderer

import "github.com/etnz/stress"

// Scenarios lists the named scenarios of a registry.
type Scenarios struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is one named scenario with its shocks sorted by instrument.
type Scenario struct {
	Name   string            `json:"name"`
	Shocks []InstrumentShock `json:"shocks"`
}

// InstrumentShock is the shock applied to one instrument.
type InstrumentShock struct {
	Instrument string         `json:"instrument"`
	Shock      stress.Percent `json:"shock"`
}

// NewScenarios creates the Scenarios of a registry, in registry order.
func NewScenarios(reg *stress.Registry) *Scenarios {
	s := &Scenarios{}
	for _, ns := range reg.Scenarios() {
		sc := Scenario{Name: ns.Name()}
		for _, id := range ns.Instruments() {
			v, _ := ns.Shock(id)
			sc.Shocks = append(sc.Shocks, InstrumentShock{Instrument: id, Shock: stress.ShockPercent(v)})
		}
		s.Scenarios = append(s.Scenarios, sc)
	}
	return s
}
