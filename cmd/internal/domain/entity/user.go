package entity

type User struct {
	ID           int    `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Timezone     string `gorm:"not null;default:UTC"` // IANA name, e.g. "Europe/Belgrade"
	CreatedAt    int64  `gorm:"not null"`
	UpdatedAt    int64  `gorm:"not null"`
}
