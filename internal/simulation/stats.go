package simulation

import (
	"sort"

	"futurecustomer/internal/model"
)

// Summarize computes median, mode and variation ratio of Likert answers.
// The median of an even count is the mean of the middle pair and ties for the
// mode resolve to the smallest value.
func Summarize(answers []int) model.Statistics {
	n := len(answers)
	if n == 0 {
		return model.Statistics{}
	}

	sorted := append([]int(nil), answers...)
	sort.Ints(sorted)

	var median float64
	if n%2 == 1 {
		median = float64(sorted[n/2])
	} else {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}

	counts := make(map[int]int, model.LikertMax)
	for _, a := range sorted {
		counts[a]++
	}
	mode, freq := sorted[0], 0
	for _, a := range sorted {
		if counts[a] > freq {
			mode, freq = a, counts[a]
		}
	}

	return model.Statistics{
		Median:         median,
		Mode:           float64(mode),
		VariationRatio: 1 - float64(freq)/float64(n),
	}
}

// BuildDistribution tallies the answers of every agent to one question
func BuildDistribution(order int, question string, answers []int) model.ResponseDistribution {
	var counts model.LikertCounts
	for _, a := range answers {
		counts.Add(a)
	}
	return model.ResponseDistribution{
		Order:      order,
		Question:   question,
		Answers:    counts,
		Statistics: Summarize(answers),
		Responses:  append([]int(nil), answers...),
	}
}

// Distributions turns an agent-by-question answer matrix into one distribution per question
func Distributions(questions []string, answers [][]int) []model.ResponseDistribution {
	dists := make([]model.ResponseDistribution, len(questions))
	for q, text := range questions {
		column := make([]int, len(answers))
		for a, row := range answers {
			column[a] = row[q]
		}
		dists[q] = BuildDistribution(q, text, column)
	}
	return dists
}
