package entity

type DecisionKind string

const (
	DecisionCreated          DecisionKind = "created"
	DecisionDeclinedConflict DecisionKind = "declined_conflict"
	DecisionDeclinedOverload DecisionKind = "declined_overload"
	DecisionOverridden       DecisionKind = "overridden"
	DecisionFailed           DecisionKind = "failed"
)

// DecisionRecord links an intake or override action to its outcome.
// Append-only, never updated.
type DecisionRecord struct {
	ID            string `gorm:"primaryKey"` // uuid
	UserID        int    `gorm:"not null;index"`
	AppointmentID *int
	VoiceLogID    *string
	Kind          DecisionKind `gorm:"not null"`
	Detail        string
	CreatedAt     int64 `gorm:"not null"`
}
