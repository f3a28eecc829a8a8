// Package export assembles the downloadable agent response archive.
//
// Everything here is a pure function of its inputs: columns follow upload order,
// rows follow agent order and the zip carries no timestamps, so identical inputs
// always produce identical bytes.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"futurecustomer/internal/model"
)

// ErrNoAgents is returned when there is nobody to export rows for
var ErrNoAgents = errors.New("no agents to export")

// Build creates the archive for the baseline round and, when it carries future
// distributions, the future round.
func Build(agents []model.Agent, baseline model.Round, future *model.Round) (*model.ExportArchive, error) {
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}

	archive := &model.ExportArchive{FileName: model.ArchiveFileName}

	content, err := EncodeTable(agents, baseline.Questions, baseline.Distributions)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", model.ResponsesFileName, err)
	}
	archive.Entries = append(archive.Entries, model.ArchiveEntry{Name: model.ResponsesFileName, Content: content})

	if future.HasFutureResponses() {
		content, err := EncodeTable(agents, future.Questions, future.FutureDistributions)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", model.FutureResponsesFileName, err)
		}
		archive.Entries = append(archive.Entries, model.ArchiveEntry{Name: model.FutureResponsesFileName, Content: content})
	}

	return archive, nil
}

// Header returns the fixed CSV header for n questions
func Header(n int) []string {
	header := make([]string, 0, n+3)
	header = append(header, "Agent", "Age", "Gender")
	for i := 1; i <= n; i++ {
		header = append(header, "q"+strconv.Itoa(i))
	}
	return header
}

// EncodeTable writes one agent-by-question CSV. A question without a distribution,
// or a distribution missing an agent's response, yields an empty cell.
func EncodeTable(agents []model.Agent, questions []model.Question, dists []model.ResponseDistribution) ([]byte, error) {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	byOrder := model.DistributionByOrder(dists)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header(len(ordered))); err != nil {
		return nil, err
	}

	row := make([]string, 0, len(ordered)+3)
	for i, agent := range agents {
		ordinal := i + 1
		row = row[:0]
		row = append(row, model.AgentLabel(ordinal), strconv.Itoa(agent.Age), agent.Gender)
		for _, q := range ordered {
			cell := ""
			if d, ok := byOrder[q.Order]; ok {
				if v, ok := d.ResponseFor(ordinal); ok {
					cell = strconv.Itoa(v)
				}
			}
			row = append(row, cell)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
