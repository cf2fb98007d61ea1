package repository

import (
	"amigella/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

// Voice logs are append-only; this repository exposes no update or delete.
type DefaultVoiceLogRepository struct {
	db *gorm.DB
}

func NewVoiceLogRepository(db *gorm.DB) *DefaultVoiceLogRepository {
	return &DefaultVoiceLogRepository{db: db}
}

func (v *DefaultVoiceLogRepository) Save(vlog *entity.VoiceLog) error {
	return v.db.Create(vlog).Error
}

func (v *DefaultVoiceLogRepository) FindByUserID(userID int, limit int) ([]*entity.VoiceLog, error) {
	var logs []*entity.VoiceLog
	err := v.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
