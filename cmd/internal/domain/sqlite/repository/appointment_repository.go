package repository

import (
	"errors"

	"amigella/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

func (a *DefaultAppointmentRepository) FindByUserID(id int) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("user_id = ?", id).
		Order("begins_at desc").
		Find(&appts).Error
	return appts, err
}

// FindInRange finds all of a user's appointments overlapping
// [rangeStart, rangeEnd), ordered by start time.
func (a *DefaultAppointmentRepository) FindInRange(userID int, rangeStart, rangeEnd int64) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("user_id = ?", userID).
		Where("begins_at < ?", rangeEnd).
		Where("ends_at > ?", rangeStart).
		Order("begins_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) Save(appointment *entity.Appointment) error {
	return a.db.Save(appointment).Error
}

// Delete removes the row for good. The product has no undo.
func (a *DefaultAppointmentRepository) Delete(appointment *entity.Appointment) error {
	return a.db.Delete(appointment).Error
}
