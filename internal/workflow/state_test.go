package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from State
		ev   Event
		want State
	}{
		{StateEmpty, EventAgentsCreated, StateAgentsCreated},
		{StateAgentsCreated, EventQuestionsLoaded, StateQuestionsLoaded},
		{StateQuestionsLoaded, EventQuestionsLoaded, StateQuestionsLoaded},
		{StateResponsesReceived, EventQuestionsLoaded, StateQuestionsLoaded},
		{StateQuestionsLoaded, EventResponsesReceived, StateResponsesReceived},
		{StateResponsesReceived, EventScenarioSubmitted, StateScenarioSubmitted},
		{StateScenarioSubmitted, EventScenarioSubmitted, StateScenarioSubmitted},
		{StateFutureQuestionsLoaded, EventScenarioSubmitted, StateScenarioSubmitted},
		{StateFutureResponsesReceived, EventScenarioSubmitted, StateScenarioSubmitted},
		{StateScenarioSubmitted, EventQuestionsLoaded, StateFutureQuestionsLoaded},
		{StateFutureQuestionsLoaded, EventQuestionsLoaded, StateFutureQuestionsLoaded},
		{StateFutureResponsesReceived, EventQuestionsLoaded, StateFutureQuestionsLoaded},
		{StateFutureQuestionsLoaded, EventResponsesReceived, StateFutureResponsesReceived},
	}

	for _, tt := range tests {
		t.Run(string(tt.ev)+"_from_"+tt.from.String(), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_Reset(t *testing.T) {
	for s := StateEmpty; s <= StateFutureResponsesReceived; s++ {
		got, err := Next(s, EventReset)
		require.NoError(t, err)
		assert.Equal(t, StateEmpty, got)
	}
}

func TestNext_Invalid(t *testing.T) {
	tests := []struct {
		from State
		ev   Event
	}{
		{StateEmpty, EventQuestionsLoaded},
		{StateEmpty, EventResponsesReceived},
		{StateEmpty, EventScenarioSubmitted},
		{StateAgentsCreated, EventAgentsCreated},
		{StateAgentsCreated, EventResponsesReceived},
		{StateQuestionsLoaded, EventScenarioSubmitted},
		{StateResponsesReceived, EventResponsesReceived},
		{StateScenarioSubmitted, EventResponsesReceived},
		{StateFutureResponsesReceived, EventAgentsCreated},
	}

	for _, tt := range tests {
		got, err := Next(tt.from, tt.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", tt.ev, tt.from)
		assert.Equal(t, tt.from, got)
	}
}

func TestState_MarshalText(t *testing.T) {
	b, err := StateFutureQuestionsLoaded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "future_questions_loaded", string(b))
	assert.Equal(t, "state(42)", State(42).String())
}
