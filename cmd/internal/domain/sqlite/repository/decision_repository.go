package repository

import (
	"amigella/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

// Decision records are append-only.
type DefaultDecisionRepository struct {
	db *gorm.DB
}

func NewDecisionRepository(db *gorm.DB) *DefaultDecisionRepository {
	return &DefaultDecisionRepository{db: db}
}

func (d *DefaultDecisionRepository) Save(rec *entity.DecisionRecord) error {
	return d.db.Create(rec).Error
}
