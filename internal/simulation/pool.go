package simulation

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"futurecustomer/internal/model"
)

// FactorLimit bounds latent factor values
const FactorLimit = 2.4

// DefaultFactorNames are used for synthetic respondents
var DefaultFactorNames = []string{
	"health_consciousness",
	"price_sensitivity",
	"environmental_concern",
	"novelty_seeking",
	"trust_in_food_industry",
}

// RespondentSource yields dataset rows to build agents from
type RespondentSource interface {
	Sample(ctx context.Context, n int) ([]model.Respondent, error)
}

// BuildPool creates count personas, sampled from src when it has rows and synthesized
// for the remainder. Agents are numbered 1..count in pool order.
func BuildPool(ctx context.Context, src RespondentSource, count int) ([]model.Persona, error) {
	var rows []model.Respondent
	if src != nil {
		sampled, err := src.Sample(ctx, count)
		if err != nil {
			return nil, fmt.Errorf("sample respondents: %w", err)
		}
		rows = sampled
	}
	if len(rows) > count {
		rows = rows[:count]
	}
	for i := len(rows); i < count; i++ {
		rows = append(rows, SyntheticRespondent(i))
	}

	pool := make([]model.Persona, count)
	for i, r := range rows {
		pool[i] = model.Persona{
			Agent:   model.Agent{ID: i + 1, Age: r.Age, Gender: r.Gender},
			Factors: append([]model.LatentFactor(nil), r.Factors...),
		}
	}
	return pool, nil
}

// SyntheticRespondent derives a stable respondent from its index
func SyntheticRespondent(i int) model.Respondent {
	gender := "female"
	if i%2 == 1 {
		gender = "male"
	}

	factors := make([]model.LatentFactor, len(DefaultFactorNames))
	for j, name := range DefaultFactorNames {
		u := unitHash(fmt.Sprintf("respondent:%d:%s", i, name))
		factors[j] = model.LatentFactor{Name: name, Value: round2((2*u - 1) * FactorLimit)}
	}

	return model.Respondent{
		Age:     18 + (i*37)%63,
		Gender:  gender,
		Factors: factors,
	}
}

// unitHash maps a key to [0, 1]
func unitHash(key string) float64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return float64(h.Sum64()%10007) / 10006
}

func clampFactor(v float64) float64 {
	return math.Max(-FactorLimit, math.Min(FactorLimit, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
