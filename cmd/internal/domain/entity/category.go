package entity

type Category struct {
	ID        int    `gorm:"primaryKey"`
	UserID    int    `gorm:"not null;index"` // References: users(id)
	Name      string `gorm:"not null"`
	Color     string `gorm:"not null"`
	Emoji     string
	IsDefault bool `gorm:"not null"`
	Priority  int  `gorm:"not null"`
	CreatedAt int64 `gorm:"not null"`
}
