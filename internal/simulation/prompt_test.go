package simulation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futurecustomer/internal/model"
)

func testPersonas() []model.Persona {
	return []model.Persona{
		{
			Agent:   model.Agent{ID: 1, Age: 34, Gender: "female"},
			Factors: []model.LatentFactor{{Name: "price_sensitivity", Value: 1.2}, {Name: "novelty_seeking", Value: -0.5}},
		},
		{
			Agent:   model.Agent{ID: 2, Age: 61, Gender: "male"},
			Factors: []model.LatentFactor{{Name: "price_sensitivity", Value: -2}, {Name: "novelty_seeking", Value: 0.25}},
		},
	}
}

func TestBuildResponsePrompt(t *testing.T) {
	prompt := buildResponsePrompt(testPersonas(), []string{"I buy organic", "I cook daily"})

	assert.Contains(t, prompt, "['Age', 'Gender', 'price_sensitivity', 'novelty_seeking']")
	assert.Contains(t, prompt, "Agent 1:\n[34, 'female', 1.20, -0.50]\n")
	assert.Contains(t, prompt, "Agent 2:\n[61, 'male', -2.00, 0.25]\n")
	assert.Contains(t, prompt, "3. Neither agree nor disagree\n")
	assert.Contains(t, prompt, "- I buy organic\n- I cook daily\n")
	assert.True(t, strings.HasSuffix(prompt, "such as explanations or extra details."))
}

func TestBuildTransformPrompt(t *testing.T) {
	prompt := buildTransformPrompt(testPersonas(), "Meat prices double")
	assert.Contains(t, prompt, "Meat prices double")
	assert.Contains(t, prompt, `"agents"`)
}

func TestParseResponses(t *testing.T) {
	text := "\nAgent 1: 3, 5\n\nAgent 2: 4,1\n"
	answers, err := parseResponses(text, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3, 5}, {4, 1}}, answers)
}

func TestParseResponses_IgnoresExtraLines(t *testing.T) {
	answers, err := parseResponses("Agent 1: 2\nAgent 2: 3\nthat is all", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2}, {3}}, answers)
}

func TestParseResponses_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"too few lines", "Agent 1: 3, 5"},
		{"wrong order", "Agent 2: 3, 5\nAgent 1: 4, 5"},
		{"prefix of a larger ordinal", "Agent 10: 3, 5\nAgent 2: 4, 5"},
		{"count mismatch", "Agent 1: 3\nAgent 2: 4, 5"},
		{"out of scale", "Agent 1: 3, 6\nAgent 2: 4, 5"},
		{"no numbers", "Agent 1: agree, agree\nAgent 2: 4, 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponses(tt.text, 2, 2)
			assert.True(t, errors.Is(err, ErrMalformedCompletion), "got %v", err)
		})
	}
}

func TestParseTransform(t *testing.T) {
	text := `{"agents":[{"agent":2,"factors":[0.5,3.1]},{"agent":1,"factors":[-0.2,0]}]}`
	future, err := parseTransform(text, testPersonas())
	require.NoError(t, err)

	assert.Equal(t, model.Agent{ID: 1, Age: 34, Gender: "female"}, future[0].Agent)
	assert.Equal(t, []model.LatentFactor{{Name: "price_sensitivity", Value: -0.2}, {Name: "novelty_seeking", Value: 0}}, future[0].Factors)
	assert.Equal(t, FactorLimit, future[1].Factors[1].Value)
}

func TestParseTransform_Rejects(t *testing.T) {
	for name, text := range map[string]string{
		"not json":       "sure, here you go",
		"missing agent":  `{"agents":[{"agent":1,"factors":[0,0]}]}`,
		"factor count":   `{"agents":[{"agent":1,"factors":[0]},{"agent":2,"factors":[0,0]}]}`,
		"empty document": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseTransform(text, testPersonas())
			assert.ErrorIs(t, err, ErrMalformedCompletion)
		})
	}
}
