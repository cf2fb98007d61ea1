package scheduling

import (
	"encoding/json"
	"errors"
	"strings"

	"amigella/cmd/internal/domain/entity"
)

// ErrMalformedExtraction means the upstream model returned something that is
// not structured data at all. The candidate is still fully usable (all
// defaults) so the attempt can be audited instead of dropped.
var ErrMalformedExtraction = errors.New("extraction payload is not structured data")

const (
	DefaultTitle           = "Novi termin"
	DefaultCategory        = "rad"
	DefaultEmotion         = "neutral"
	DefaultDurationMinutes = 60
	MinDurationMinutes     = 5
	MaxDurationMinutes     = 1440
	DefaultUrgency         = 0.5
)

// rawExtraction mirrors the loosely-typed JSON the language model returns.
// Every field is optional and none is trusted.
type rawExtraction struct {
	Title           string   `json:"title"`
	StartTime       string   `json:"start_time"`
	DurationMinutes *float64 `json:"duration_minutes"`
	Category        string   `json:"category"`
	Priority        string   `json:"priority"`
	Location        string   `json:"location"`
	Person          string   `json:"person"`
	UrgencyLevel    *float64 `json:"urgency_level"`
	Confidence      *float64 `json:"confidence"`
	Emotion         string   `json:"emotion"`
}

// Candidate is a validated, defaulted appointment draft. It is the only
// shape extraction data takes past this boundary.
type Candidate struct {
	Title           string
	StartExpression string
	DurationMinutes int
	// DurationExplicit records whether the duration came from the
	// extraction or is the default; only a default may be replaced by a
	// duration derived from the time expression.
	DurationExplicit bool
	Category         string
	Priority         entity.Priority
	Location         string
	Person           string
	Urgency          float64
	Confidence       float64
	Emotion          string
}

// Normalize maps a raw extraction payload into a Candidate, applying the
// documented default for every absent or invalid field. A payload that is
// not JSON yields a fully-defaulted Candidate plus ErrMalformedExtraction.
func Normalize(payload []byte) (*Candidate, error) {
	cand := &Candidate{
		Title:           DefaultTitle,
		DurationMinutes: DefaultDurationMinutes,
		Category:        DefaultCategory,
		Priority:        entity.PriorityMedium,
		Urgency:         DefaultUrgency,
		Confidence:      0.0,
		Emotion:         DefaultEmotion,
	}

	var raw rawExtraction
	if err := json.Unmarshal(stripFences(payload), &raw); err != nil {
		return cand, ErrMalformedExtraction
	}

	if title := strings.TrimSpace(raw.Title); title != "" {
		cand.Title = title
	}
	cand.StartExpression = strings.TrimSpace(raw.StartTime)

	if raw.DurationMinutes != nil {
		cand.DurationMinutes = clampInt(int(*raw.DurationMinutes), MinDurationMinutes, MaxDurationMinutes)
		cand.DurationExplicit = true
	}

	if cat := strings.ToLower(strings.TrimSpace(raw.Category)); cat != "" {
		cand.Category = cat
	}

	if p := entity.Priority(strings.ToLower(strings.TrimSpace(raw.Priority))); p.Valid() {
		cand.Priority = p
	}

	cand.Location = strings.TrimSpace(raw.Location)
	cand.Person = strings.TrimSpace(raw.Person)

	if raw.UrgencyLevel != nil {
		cand.Urgency = clampFloat(*raw.UrgencyLevel, 0, 1)
	}
	if raw.Confidence != nil {
		cand.Confidence = clampFloat(*raw.Confidence, 0, 1)
	}
	if emotion := strings.ToLower(strings.TrimSpace(raw.Emotion)); emotion != "" {
		cand.Emotion = emotion
	}
	return cand, nil
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in despite being told not to.
func stripFences(payload []byte) []byte {
	s := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(s, "```") {
		return payload
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(s)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
