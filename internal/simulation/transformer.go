package simulation

import (
	"context"
	"log/slog"

	"futurecustomer/internal/model"
)

// Transformer moves a persona pool into a future scenario
type Transformer struct {
	llm       Completer
	modelName string
	logger    *slog.Logger
}

// NewTransformer creates a transformer. A nil llm always uses the mock.
func NewTransformer(llm Completer, modelName string, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{llm: llm, modelName: modelName, logger: logger.With("component", "transformer")}
}

// Transform returns the future pool and the name of the responder that produced it.
// Agents keep their ordinal, age and gender; only factor values change.
func (t *Transformer) Transform(ctx context.Context, personas []model.Persona, scenario string) ([]model.Persona, string) {
	if t.llm == nil {
		return mockTransform(personas, scenario), ResponderMock
	}

	text, err := t.llm.Complete(ctx, t.modelName, buildTransformPrompt(personas, scenario), true)
	if err != nil {
		t.logger.Warn("llm call failed, using mock", "error", err)
		return mockTransform(personas, scenario), ResponderMock
	}

	future, err := parseTransform(text, personas)
	if err != nil {
		t.logger.Warn("unusable llm transform, using mock", "error", err)
		return mockTransform(personas, scenario), ResponderMock
	}
	return future, ResponderGemini
}

// mockTransform shifts every factor by an amount derived from the scenario text and factor name
func mockTransform(personas []model.Persona, scenario string) []model.Persona {
	out := make([]model.Persona, len(personas))
	for i, p := range personas {
		factors := make([]model.LatentFactor, len(p.Factors))
		for j, f := range p.Factors {
			shift := (2*unitHash("scenario:"+scenario+":"+f.Name) - 1) * 0.6
			factors[j] = model.LatentFactor{Name: f.Name, Value: round2(clampFactor(f.Value + shift))}
		}
		out[i] = model.Persona{Agent: p.Agent, Factors: factors}
	}
	return out
}
