package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AttendanceRecord struct {
	ID            uint      `gorm:"primaryKey"`
	EventID       uint      `gorm:"not null;index:idx_attendance_event_day"`
	ParticipantID uint      `gorm:"not null;index;index:idx_attendance_open,unique,where:check_out IS NULL"`
	Day           string    `gorm:"not null;size:10;index:idx_attendance_event_day;index:idx_attendance_open,unique,where:check_out IS NULL"`
	CheckIn       time.Time `gorm:"not null"`
	CheckOut      *time.Time
	OperatorID    *uint
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type AttendanceDAO struct {
	db *gorm.DB
}

func NewAttendanceDAO(db *gorm.DB) *AttendanceDAO {
	return &AttendanceDAO{db: db}
}

func (d *AttendanceDAO) FindByID(ctx context.Context, id uint) (AttendanceRecord, error) {
	var record AttendanceRecord
	if err := d.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return AttendanceRecord{}, notFound(err, ErrAttendanceNotFound)
	}
	return record, nil
}

// FindOpen returns the record of day that has no check-out yet.
func (d *AttendanceDAO) FindOpen(ctx context.Context, participantID uint, day string) (AttendanceRecord, error) {
	var record AttendanceRecord
	err := d.db.WithContext(ctx).
		Where("participant_id = ? AND day = ? AND check_out IS NULL", participantID, day).
		Order("check_in DESC").
		First(&record).Error
	if err != nil {
		return AttendanceRecord{}, notFound(err, ErrAttendanceNotFound)
	}
	return record, nil
}

func (d *AttendanceDAO) FindByParticipant(ctx context.Context, participantID uint) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := d.db.WithContext(ctx).Where("participant_id = ?", participantID).Order("check_in ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (d *AttendanceDAO) FindByEventDay(ctx context.Context, eventID uint, day string) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := d.db.WithContext(ctx).Where("event_id = ? AND day = ?", eventID, day).Order("check_in ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CheckIn stores a new record and refreshes the participant's base fields.
// A second open record on the same day fails with ErrAttendanceOpenExists.
func (d *AttendanceDAO) CheckIn(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAttendanceOpenExists
			}
			return err
		}
		return syncParticipantTimes(tx, record.ParticipantID)
	})
	if err != nil {
		return AttendanceRecord{}, err
	}
	return record, nil
}

// CheckOut closes record and refreshes the participant's base fields.
func (d *AttendanceDAO) CheckOut(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return syncParticipantTimes(tx, record.ParticipantID)
	})
	if err != nil {
		return AttendanceRecord{}, err
	}
	return record, nil
}

// Delete removes a record and refreshes the participant's base fields.
func (d *AttendanceDAO) Delete(ctx context.Context, record AttendanceRecord) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&AttendanceRecord{}, record.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAttendanceNotFound
		}
		return syncParticipantTimes(tx, record.ParticipantID)
	})
}

// syncParticipantTimes copies the latest record by check-in onto the
// participant's base check-in and check-out, or clears them when no record
// is left.
func syncParticipantTimes(tx *gorm.DB, participantID uint) error {
	var latest AttendanceRecord
	err := tx.Where("participant_id = ?", participantID).Order("check_in DESC").Order("id DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return setParticipantTimes(tx, participantID, nil, nil)
	}
	if err != nil {
		return err
	}
	return setParticipantTimes(tx, participantID, &latest.CheckIn, latest.CheckOut)
}

func setParticipantTimes(tx *gorm.DB, participantID uint, checkIn, checkOut *time.Time) error {
	result := tx.Model(&Participant{}).Where("id = ?", participantID).Updates(map[string]any{
		"check_in":  checkIn,
		"check_out": checkOut,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
