package model

// SimulationState is everything the simulator keeps for one session
type SimulationState struct {
	Personas       []Persona `json:"personas"`
	FuturePersonas []Persona `json:"futurePersonas,omitempty"`
	Scenario       *Scenario `json:"scenario,omitempty"`
	Baseline       *Round    `json:"baseline,omitempty"`
	Future         *Round    `json:"future,omitempty"`
}

// Agents returns the agents of the baseline pool in order
func (s *SimulationState) Agents() []Agent {
	agents := make([]Agent, len(s.Personas))
	for i, p := range s.Personas {
		agents[i] = p.Agent
	}
	return agents
}

// UnderScenario reports whether a transformed pool is active
func (s *SimulationState) UnderScenario() bool {
	return len(s.FuturePersonas) > 0
}
