package entity

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID               int `gorm:"primaryKey"`
	UserID           int `gorm:"not null;index"` // References: users(id)
	CategoryID       *int
	Title            string `gorm:"not null"`
	Description      *string
	BeginsAt         int64    `gorm:"not null"`
	EndsAt           int64    `gorm:"not null"`
	DurationMinutes  int      `gorm:"not null"`
	Priority         Priority `gorm:"not null"`
	Status           Status   `gorm:"not null;index"`
	IsVoiceInput     bool     `gorm:"not null"`
	VoiceConfidence  *float64
	VoiceLogID       *string
	OverloadEligible bool  `gorm:"not null"`
	CreatedAt        int64 `gorm:"not null"`
	UpdatedAt        int64 `gorm:"not null"`

	// Relations
	CreatedBy User `gorm:"foreignKey:UserID;references:ID"`
}
