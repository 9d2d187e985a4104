package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/credenciamento/event-api/internal/domain"
)

type Event struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Venue       string
	Address     string

	StartDate         time.Time `gorm:"not null"`
	EndDate           time.Time `gorm:"not null"`
	SetupStartDate    *time.Time
	SetupEndDate      *time.Time
	TeardownStartDate *time.Time
	TeardownEndDate   *time.Time
	Days              []domain.EventDay `gorm:"serializer:json"`

	Status     string `gorm:"not null;default:active;index"`
	Visibility string `gorm:"not null;default:private"`

	Managers []domain.StaffMember  `gorm:"serializer:json"`
	Staff    []domain.StaffMember  `gorm:"serializer:json"`
	History  []domain.HistoryEntry `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type EventQuery struct {
	Status     string
	Visibility string
	Search     string
	IDs        []uint
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{db: db}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	if err := d.db.WithContext(ctx).Create(&event).Error; err != nil {
		return Event{}, err
	}
	return event, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	if err := d.db.WithContext(ctx).Save(&event).Error; err != nil {
		return Event{}, err
	}
	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event
	if err := d.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return Event{}, notFound(err, ErrEventNotFound)
	}
	return event, nil
}

func (d *EventDAO) Find(ctx context.Context, q EventQuery) ([]Event, error) {
	tx := d.db.WithContext(ctx).Model(&Event{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Visibility != "" {
		tx = tx.Where("visibility = ?", q.Visibility)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(venue) LIKE ?)", like, like)
	}
	if q.IDs != nil {
		tx = tx.Where("id IN ?", q.IDs)
	}

	var events []Event
	if err := tx.Order("start_date DESC, id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// SoftDelete marks the event deleted after saving its final history.
func (d *EventDAO) SoftDelete(ctx context.Context, event Event) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		result := tx.Delete(&Event{}, event.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}
		return nil
	})
}

// CountParticipants returns the number of live participants per event.
func (d *EventDAO) CountParticipants(ctx context.Context, eventIDs []uint) (map[uint]int64, error) {
	type row struct {
		EventID uint
		Count   int64
	}

	var rows []row
	err := d.db.WithContext(ctx).Model(&Participant{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.EventID] = r.Count
	}
	return counts, nil
}
