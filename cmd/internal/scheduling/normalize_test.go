package scheduling

import (
	"testing"

	"amigella/cmd/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFullPayloadRoundTrip(t *testing.T) {
	payload := []byte(`{
		"title": "Sastanak sa timom",
		"start_time": "sutra 14:00",
		"duration_minutes": 90,
		"category": "Rad",
		"priority": "high",
		"location": "kancelarija",
		"person": "Marko",
		"urgency_level": 0.8,
		"confidence": 0.95,
		"emotion": "stressed"
	}`)

	cand, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "Sastanak sa timom", cand.Title)
	assert.Equal(t, "sutra 14:00", cand.StartExpression)
	assert.Equal(t, 90, cand.DurationMinutes)
	assert.True(t, cand.DurationExplicit)
	assert.Equal(t, "rad", cand.Category)
	assert.Equal(t, entity.PriorityHigh, cand.Priority)
	assert.Equal(t, "kancelarija", cand.Location)
	assert.Equal(t, "Marko", cand.Person)
	assert.InDelta(t, 0.8, cand.Urgency, 1e-9)
	assert.InDelta(t, 0.95, cand.Confidence, 1e-9)
	assert.Equal(t, "stressed", cand.Emotion)
}

func TestNormalizeEmptyPayloadDefaults(t *testing.T) {
	cand, err := Normalize([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, cand.Title)
	assert.Empty(t, cand.StartExpression)
	assert.Equal(t, DefaultDurationMinutes, cand.DurationMinutes)
	assert.False(t, cand.DurationExplicit)
	assert.Equal(t, DefaultCategory, cand.Category)
	assert.Equal(t, entity.PriorityMedium, cand.Priority)
	assert.InDelta(t, DefaultUrgency, cand.Urgency, 1e-9)
	assert.Zero(t, cand.Confidence)
	assert.Equal(t, DefaultEmotion, cand.Emotion)
}

func TestNormalizeGarbageIsMalformedButUsable(t *testing.T) {
	cand, err := Normalize([]byte("sorry, I could not parse that"))
	assert.ErrorIs(t, err, ErrMalformedExtraction)

	// The candidate still carries every documented default.
	require.NotNil(t, cand)
	assert.Equal(t, DefaultTitle, cand.Title)
	assert.Equal(t, DefaultDurationMinutes, cand.DurationMinutes)
	assert.Equal(t, entity.PriorityMedium, cand.Priority)
}

func TestNormalizeClampsOutOfRangeValues(t *testing.T) {
	payload := []byte(`{"duration_minutes": 5000, "urgency_level": 3.5, "confidence": -1}`)

	cand, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, MaxDurationMinutes, cand.DurationMinutes)
	assert.InDelta(t, 1.0, cand.Urgency, 1e-9)
	assert.Zero(t, cand.Confidence)
}

func TestNormalizeCoercesUnknownPriority(t *testing.T) {
	cand, err := Normalize([]byte(`{"priority": "urgent!!"}`))
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityMedium, cand.Priority)
}

func TestNormalizeStripsMarkdownFence(t *testing.T) {
	payload := []byte("```json\n{\"title\": \"Trening\"}\n```")

	cand, err := Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, "Trening", cand.Title)
}
