package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"futurecustomer/internal/model"
)

// Responder names recorded per answered batch
const (
	ResponderGemini = "gemini"
	ResponderMock   = "mock"
)

// Responder answers question batches on behalf of a persona pool
type Responder struct {
	llm       Completer
	modelName string
	logger    *slog.Logger
}

// NewResponder creates a responder. A nil llm always uses the mock.
func NewResponder(llm Completer, modelName string, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{llm: llm, modelName: modelName, logger: logger.With("component", "responder")}
}

// Answer returns answers[agent][question] and the name of the responder that produced them
func (r *Responder) Answer(ctx context.Context, personas []model.Persona, questions []string) ([][]int, string) {
	if r.llm == nil {
		return mockAnswers(personas, questions), ResponderMock
	}

	prompt := buildResponsePrompt(personas, questions)
	text, err := r.llm.Complete(ctx, r.modelName, prompt, false)
	if err != nil {
		r.logger.Warn("llm call failed, using mock", "error", err)
		return mockAnswers(personas, questions), ResponderMock
	}

	answers, err := parseResponses(text, len(personas), len(questions))
	if err != nil {
		r.logger.Warn("unusable llm answer, using mock", "error", err)
		return mockAnswers(personas, questions), ResponderMock
	}
	return answers, ResponderGemini
}

// mockAnswers leans each persona's answer on its mean factor value, tilted per question
func mockAnswers(personas []model.Persona, questions []string) [][]int {
	answers := make([][]int, len(personas))
	for a, p := range personas {
		lean := meanFactor(p.Factors) / FactorLimit
		row := make([]int, len(questions))
		for q, text := range questions {
			tilt := 2*unitHash("question:"+text) - 1
			jitter := unitHash(fmt.Sprintf("answer:%d:%d:%s", p.Agent.ID, q, text)) - 0.5
			score := 3 + 1.5*lean + tilt + jitter
			row[q] = int(math.Max(model.LikertMin, math.Min(model.LikertMax, math.Round(score))))
		}
		answers[a] = row
	}
	return answers
}

func meanFactor(factors []model.LatentFactor) float64 {
	if len(factors) == 0 {
		return 0
	}
	var sum float64
	for _, f := range factors {
		sum += f.Value
	}
	return sum / float64(len(factors))
}
