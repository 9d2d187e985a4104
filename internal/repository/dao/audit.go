package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type AuditEntry struct {
	ID        uint   `gorm:"primaryKey"`
	ActorID   uint   `gorm:"not null;index"`
	ActorType string `gorm:"not null"`
	EventID   *uint  `gorm:"index"`
	Entity    string `gorm:"not null;index"`
	EntityID  uint
	Action    string `gorm:"not null"`
	Before    string `gorm:"type:text"`
	After     string `gorm:"type:text"`
	RequestID string
	CreatedAt time.Time `gorm:"index"`
}

type AuditQuery struct {
	EventID  *uint
	Entity   string
	ActorID  *uint
	Action   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type AuditDAO struct {
	db *gorm.DB
}

func NewAuditDAO(db *gorm.DB) *AuditDAO {
	return &AuditDAO{db: db}
}

func (d *AuditDAO) Insert(ctx context.Context, entry AuditEntry) (AuditEntry, error) {
	if err := d.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return AuditEntry{}, err
	}
	return entry, nil
}

func (d *AuditDAO) Find(ctx context.Context, q AuditQuery) ([]AuditEntry, int64, error) {
	var total int64
	if err := d.filter(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []AuditEntry
	err := d.filter(ctx, q).Order("created_at DESC, id DESC").Scopes(paginate(q.Page, q.PageSize)).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (d *AuditDAO) filter(ctx context.Context, q AuditQuery) *gorm.DB {
	tx := d.db.WithContext(ctx).Model(&AuditEntry{})
	if q.EventID != nil {
		tx = tx.Where("event_id = ?", *q.EventID)
	}
	if q.Entity != "" {
		tx = tx.Where("entity = ?", q.Entity)
	}
	if q.ActorID != nil {
		tx = tx.Where("actor_id = ?", *q.ActorID)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}
	return tx
}
