package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futurecustomer/internal/model"
)

func testAgents() []model.Agent {
	return []model.Agent{
		{ID: 1, Age: 20, Gender: "female"},
		{ID: 2, Age: 40, Gender: "male"},
		{ID: 3, Age: 70, Gender: "female"},
	}
}

func testRound(texts []string, answers [][]int) model.Round {
	round := model.Round{Questions: model.NewQuestions(texts)}
	for i, text := range texts {
		round.Distributions = append(round.Distributions, model.ResponseDistribution{
			Order:     i,
			Question:  text,
			Responses: answers[i],
		})
	}
	return round
}

func TestBuild_BaselineOnly(t *testing.T) {
	round := testRound(
		[]string{"Pasta is good", "Rice is good", "Bread is good"},
		[][]int{{5, 4, 3}, {1, 2, 3}, {3, 3, 5}},
	)

	archive, err := Build(testAgents(), round, nil)
	require.NoError(t, err)

	assert.Equal(t, "agent_responses.zip", archive.FileName)
	require.Len(t, archive.Entries, 1)
	assert.Equal(t, "agent_responses.csv", archive.Entries[0].Name)

	lines := strings.Split(strings.TrimSuffix(string(archive.Entries[0].Content), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Agent,Age,Gender,q1,q2,q3", lines[0])
	assert.Equal(t, "Agent 1,20,female,5,1,3", lines[1])
	assert.Equal(t, "Agent 2,40,male,4,2,3", lines[2])
	assert.Equal(t, "Agent 3,70,female,3,3,5", lines[3])
}

func TestBuild_WithFutureRound(t *testing.T) {
	baseline := testRound([]string{"A", "B", "C"}, [][]int{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}})

	future := testRound([]string{"D", "E"}, [][]int{{4, 4, 4}, {5, 5, 5}})
	future.FutureDistributions = []model.ResponseDistribution{
		{Order: 0, Question: "D", Responses: []int{1, 2, 3}},
		{Order: 1, Question: "E", Responses: []int{3, 2, 1}},
	}

	archive, err := Build(testAgents(), baseline, &future)
	require.NoError(t, err)
	require.Len(t, archive.Entries, 2)

	entry, ok := archive.Entry("agent_future_responses.csv")
	require.True(t, ok)
	assert.Equal(t, "Agent,Age,Gender,q1,q2\nAgent 1,20,female,1,3\nAgent 2,40,male,2,2\nAgent 3,70,female,3,1\n", string(entry.Content))

	base, ok := archive.Entry("agent_responses.csv")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(base.Content), "Agent,Age,Gender,q1,q2,q3\n"))
}

func TestBuild_FutureRoundWithoutFutureDistributionsIsOmitted(t *testing.T) {
	baseline := testRound([]string{"A"}, [][]int{{1, 2, 3}})
	future := testRound([]string{"A"}, [][]int{{1, 2, 3}})

	archive, err := Build(testAgents(), baseline, &future)
	require.NoError(t, err)
	assert.Len(t, archive.Entries, 1)

	_, ok := archive.Entry("agent_future_responses.csv")
	assert.False(t, ok)
}

func TestBuild_ShapeInvariants(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		texts := make([]string, n)
		answers := make([][]int, n)
		for i := range texts {
			texts[i] = strings.Repeat("q", i+1)
			answers[i] = []int{1, 2, 3}
		}

		archive, err := Build(testAgents(), testRound(texts, answers), nil)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSuffix(string(archive.Entries[0].Content), "\n"), "\n")
		assert.Len(t, lines, len(testAgents())+1)
		for _, line := range lines {
			assert.Len(t, strings.Split(line, ","), n+3)
		}
	}
}

func TestEncodeTable_ColumnsFollowUploadOrder(t *testing.T) {
	questions := []model.Question{{Text: "second", Order: 1}, {Text: "first", Order: 0}}
	dists := []model.ResponseDistribution{
		{Order: 1, Responses: []int{2}},
		{Order: 0, Responses: []int{1}},
	}

	content, err := EncodeTable([]model.Agent{{ID: 1, Age: 30, Gender: "other"}}, questions, dists)
	require.NoError(t, err)
	assert.Equal(t, "Agent,Age,Gender,q1,q2\nAgent 1,30,other,1,2\n", string(content))
}

func TestEncodeTable_MissingResponsesLeaveEmptyCells(t *testing.T) {
	questions := model.NewQuestions([]string{"A", "B"})
	dists := []model.ResponseDistribution{{Order: 0, Responses: []int{4}}}

	content, err := EncodeTable(testAgents()[:2], questions, dists)
	require.NoError(t, err)
	assert.Equal(t, "Agent,Age,Gender,q1,q2\nAgent 1,20,female,4,\nAgent 2,40,male,,\n", string(content))
}

func TestEncodeTable_QuotesFieldsThatNeedIt(t *testing.T) {
	agents := []model.Agent{{ID: 1, Age: 30, Gender: "non-binary, other"}}

	content, err := EncodeTable(agents, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Agent,Age,Gender\nAgent 1,30,\"non-binary, other\"\n", string(content))
}

func TestBuild_NoAgents(t *testing.T) {
	_, err := Build(nil, model.Round{}, nil)
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestDownload_Deterministic(t *testing.T) {
	baseline := testRound([]string{"A", "B"}, [][]int{{1, 2, 3}, {3, 2, 1}})
	future := testRound([]string{"A", "B"}, [][]int{{1, 2, 3}, {3, 2, 1}})
	future.FutureDistributions = future.Distributions

	first, err := Download(testAgents(), baseline, &future)
	require.NoError(t, err)
	second, err := Download(testAgents(), baseline, &future)
	require.NoError(t, err)

	assert.Equal(t, "agent_responses.zip", first.FileName)
	assert.Equal(t, first.Data, second.Data)

	archive, err := ReadZip(first.Data)
	require.NoError(t, err)
	require.Len(t, archive.Entries, 2)
	assert.Equal(t, "agent_responses.csv", archive.Entries[0].Name)
	assert.Equal(t, "agent_future_responses.csv", archive.Entries[1].Name)

	lines := strings.Split(string(archive.Entries[0].Content), "\n")
	assert.Regexp(t, `^Agent\s*1`, lines[1])
}
