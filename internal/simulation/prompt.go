package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"futurecustomer/internal/model"
)

// ErrMalformedCompletion is returned when model output does not follow the requested format
var ErrMalformedCompletion = errors.New("malformed completion")

const factorPreamble = "I have made an latent factor analysis for survey respondents on a food and " +
	"food production related survey. " +
	"The latent variables take values in the range of approximately -2.4 to +2.4. " +
	"Negative values indicate weaker or less favorable attitudes toward the associated concept, \n" +
	"while positive values indicate stronger or more favorable attitudes.\n" +
	"These values represent underlying factors that influence consumer behavior. " +
	"The magnitude of the value represents the strength of the attitude or belief.\n" +
	"For example a value closer to +2.4 indicates a stronger agreement with a positive statement,\n" +
	"while a value closer to -2.4 indicates a stronger disagreement.\n" +
	"A value of 0 represents a neutral stance, indicating no strong opinion either way.\n" +
	"Each agent represents a unique consumer.\n" +
	"Here are age, gender and the latent factors for each respondent in a list :\n\n"

const answerInstructions = "\n IMPORTANT: Each agent must provide exactly one numerical response per question.\n" +
	"The number of responses must match the number of questions given above.\n" +
	"Responses should be given in a single line per agent, separated by commas.\n" +
	"Do not provide any additional explanation or text.\n" +
	"The output must only include the agents' responses and nothing else.\n" +
	"For example, if there are two questions:\n" +
	"Agent 1: 3, 5\n" +
	"Agent 2: 4, 5\n" +
	"Agent 3: 2, 3\n" +
	"...\n" +
	"Nothing else should be included in the response, such as explanations or extra details."

// buildResponsePrompt asks the model to answer every question for every persona in one call
func buildResponsePrompt(personas []model.Persona, questions []string) string {
	var b strings.Builder
	b.WriteString(factorPreamble)
	writePersonas(&b, personas)

	b.WriteString("Each agent should answer the questions on a Likert scale from 1-5:\n" +
		"1. Strongly disagree\n" +
		"2. Disagree\n" +
		"3. Neither agree nor disagree\n" +
		"4. Agree\n" +
		"5. Strongly agree\n" +
		"Here are the questions:\n")
	for _, q := range questions {
		b.WriteString("- " + q + "\n")
	}
	b.WriteString(answerInstructions)
	return b.String()
}

// buildTransformPrompt asks the model for new factor values under a future scenario
func buildTransformPrompt(personas []model.Persona, scenario string) string {
	var b strings.Builder
	b.WriteString(factorPreamble)
	writePersonas(&b, personas)

	fmt.Fprintf(&b, "Imagine the following future scenario has come true:\n%s\n\n", scenario)
	b.WriteString("Estimate how each agent's latent factors change in that future. " +
		"Keep every value within -2.4 to +2.4 and keep the factor order unchanged.\n" +
		"Respond with JSON only, in this shape:\n" +
		`{"agents": [{"agent": 1, "factors": [0.1, -0.4]}]}` + "\n" +
		"Include every agent exactly once.")
	return b.String()
}

func writePersonas(b *strings.Builder, personas []model.Persona) {
	names := []string{"'Age'", "'Gender'"}
	if len(personas) > 0 {
		for _, f := range personas[0].Factors {
			names = append(names, "'"+f.Name+"'")
		}
	}
	b.WriteString("[" + strings.Join(names, ", ") + "]\n\n")

	b.WriteString("And here are the agents' age, gender and values for the latent factors in lists. The " +
		"values are in the same order as in the previous list:\n\n")
	for i, p := range personas {
		values := []string{strconv.Itoa(p.Agent.Age), "'" + p.Agent.Gender + "'"}
		for _, f := range p.Factors {
			values = append(values, strconv.FormatFloat(f.Value, 'f', 2, 64))
		}
		fmt.Fprintf(b, "Agent %d:\n[%s]\n\n", i+1, strings.Join(values, ", "))
	}
}

// parseResponses reads "Agent N: a, b, ..." lines. Every agent must appear in order with
// exactly one Likert value per question.
func parseResponses(text string, agents, questions int) ([][]int, error) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < agents {
		return nil, fmt.Errorf("%w: expected %d agents, got %d lines", ErrMalformedCompletion, agents, len(lines))
	}

	answers := make([][]int, agents)
	for i := 0; i < agents; i++ {
		prefix := fmt.Sprintf("Agent %d:", i+1)
		rest, ok := strings.CutPrefix(lines[i], prefix)
		if !ok {
			return nil, fmt.Errorf("%w: line %d does not start with %q", ErrMalformedCompletion, i+1, prefix)
		}

		var row []int
		for _, field := range strings.Split(rest, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				continue
			}
			if n < model.LikertMin || n > model.LikertMax {
				return nil, fmt.Errorf("%w: agent %d answered %d", ErrMalformedCompletion, i+1, n)
			}
			row = append(row, n)
		}
		if len(row) != questions {
			return nil, fmt.Errorf("%w: agent %d gave %d answers for %d questions", ErrMalformedCompletion, i+1, len(row), questions)
		}
		answers[i] = row
	}
	return answers, nil
}

type transformResult struct {
	Agents []struct {
		Agent   int       `json:"agent"`
		Factors []float64 `json:"factors"`
	} `json:"agents"`
}

// parseTransform applies model-proposed factor values to a copy of the pool
func parseTransform(text string, personas []model.Persona) ([]model.Persona, error) {
	var result transformResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}

	byAgent := make(map[int][]float64, len(result.Agents))
	for _, a := range result.Agents {
		byAgent[a.Agent] = a.Factors
	}

	out := make([]model.Persona, len(personas))
	for i, p := range personas {
		values, ok := byAgent[i+1]
		if !ok {
			return nil, fmt.Errorf("%w: agent %d missing", ErrMalformedCompletion, i+1)
		}
		if len(values) != len(p.Factors) {
			return nil, fmt.Errorf("%w: agent %d has %d factors, want %d", ErrMalformedCompletion, i+1, len(values), len(p.Factors))
		}
		factors := make([]model.LatentFactor, len(p.Factors))
		for j, f := range p.Factors {
			factors[j] = model.LatentFactor{Name: f.Name, Value: clampFactor(values[j])}
		}
		out[i] = model.Persona{Agent: p.Agent, Factors: factors}
	}
	return out, nil
}
