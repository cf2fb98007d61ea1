package entity

// VoiceLog is the append-only audit record of a single voice submission.
// One row per attempt, written even when no appointment results from it.
type VoiceLog struct {
	ID           string `gorm:"primaryKey"` // uuid
	UserID       int    `gorm:"not null;index"`
	AudioFileURL string
	Transcript   string `gorm:"not null"`

	// Snapshot of the extraction after normalization.
	ExtractedTitle    string
	StartExpression   string
	DurationMinutes   int
	ExtractedCategory string
	ExtractedPriority Priority
	UrgencyScore      float64
	Confidence        float64
	Emotion           string

	CreatedAt int64 `gorm:"not null"`
}
