package simulation

import (
	"fmt"
	"io"
	"strings"

	"futurecustomer/internal/model"

	"gopkg.in/yaml.v3"
)

// Dataset is the YAML file format of a respondent dataset
type Dataset struct {
	Respondents []model.Respondent `yaml:"respondents"`
}

// LoadDataset decodes and validates a YAML respondent dataset. Every respondent must
// carry the same factor names in the same order, since prompts list them once.
func LoadDataset(r io.Reader) ([]model.Respondent, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(ds.Respondents) == 0 {
		return nil, fmt.Errorf("dataset has no respondents")
	}

	names := factorNames(ds.Respondents[0].Factors)
	for i, resp := range ds.Respondents {
		if resp.Age <= 0 {
			return nil, fmt.Errorf("respondent %d: age must be positive", i+1)
		}
		if strings.TrimSpace(resp.Gender) == "" {
			return nil, fmt.Errorf("respondent %d: gender is required", i+1)
		}
		if got := factorNames(resp.Factors); got != names {
			return nil, fmt.Errorf("respondent %d: factors [%s] differ from [%s]", i+1, got, names)
		}
		for j := range resp.Factors {
			ds.Respondents[i].Factors[j].Value = clampFactor(resp.Factors[j].Value)
		}
	}
	return ds.Respondents, nil
}

// SyntheticDataset generates n respondents
func SyntheticDataset(n int) []model.Respondent {
	out := make([]model.Respondent, n)
	for i := range out {
		out[i] = SyntheticRespondent(i)
	}
	return out
}

func factorNames(factors []model.LatentFactor) string {
	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
