package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/credenciamento/event-api/internal/domain"
)

type MovementCredential struct {
	ID            uint                `gorm:"primaryKey"`
	EventID       uint                `gorm:"not null;index:idx_movement_event_code,unique,where:current_code <> ''"`
	ParticipantID uint                `gorm:"not null;uniqueIndex"`
	CurrentCode   string              `gorm:"index:idx_movement_event_code,unique,where:current_code <> ''"`
	History       []domain.CodeChange `gorm:"serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MovementDAO struct {
	db *gorm.DB
}

func NewMovementDAO(db *gorm.DB) *MovementDAO {
	return &MovementDAO{db: db}
}

func (d *MovementDAO) FindByParticipant(ctx context.Context, participantID uint) (MovementCredential, error) {
	var m MovementCredential
	if err := d.db.WithContext(ctx).Where("participant_id = ?", participantID).First(&m).Error; err != nil {
		return MovementCredential{}, notFound(err, ErrMovementNotFound)
	}
	return m, nil
}

func (d *MovementDAO) FindByCode(ctx context.Context, eventID uint, code string) (MovementCredential, error) {
	var m MovementCredential
	err := d.db.WithContext(ctx).Where("event_id = ? AND current_code = ?", eventID, code).First(&m).Error
	if err != nil {
		return MovementCredential{}, notFound(err, ErrMovementNotFound)
	}
	return m, nil
}

func (d *MovementDAO) FindByEvent(ctx context.Context, eventID uint) ([]MovementCredential, error) {
	var ms []MovementCredential
	if err := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// Save inserts m when it has no ID yet. A code already held by another
// participant of the event fails with ErrMovementCodeExists.
func (d *MovementDAO) Save(ctx context.Context, m MovementCredential) (MovementCredential, error) {
	if err := d.db.WithContext(ctx).Save(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return MovementCredential{}, ErrMovementCodeExists
		}
		return MovementCredential{}, err
	}
	return m, nil
}
