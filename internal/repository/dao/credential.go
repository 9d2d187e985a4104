package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Credential struct {
	ID          uint     `gorm:"primaryKey"`
	EventID     uint     `gorm:"not null;index;index:idx_credential_event_name,unique,where:deleted_at IS NULL"`
	Name        string   `gorm:"not null;index:idx_credential_event_name,unique,where:deleted_at IS NULL"`
	Color       string   `gorm:"not null;default:'#000000'"`
	Active      bool     `gorm:"not null;default:true"`
	Distributed bool     `gorm:"not null;default:false"`
	WorkDays    []string `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

type CredentialDAO struct {
	db *gorm.DB
}

func NewCredentialDAO(db *gorm.DB) *CredentialDAO {
	return &CredentialDAO{db: db}
}

func (d *CredentialDAO) Insert(ctx context.Context, credential Credential) (Credential, error) {
	if err := d.db.WithContext(ctx).Create(&credential).Error; err != nil {
		if isUniqueViolation(err) {
			return Credential{}, ErrCredentialNameExists
		}
		return Credential{}, err
	}
	return credential, nil
}

func (d *CredentialDAO) Update(ctx context.Context, credential Credential) (Credential, error) {
	// Select("*") so that false booleans are written too.
	err := d.db.WithContext(ctx).Model(&credential).Select("*").Omit("CreatedAt", "DeletedAt").Updates(&credential).Error
	if err != nil {
		return Credential{}, err
	}
	return credential, nil
}

func (d *CredentialDAO) FindByID(ctx context.Context, id uint) (Credential, error) {
	var credential Credential
	if err := d.db.WithContext(ctx).First(&credential, id).Error; err != nil {
		return Credential{}, notFound(err, ErrCredentialNotFound)
	}
	return credential, nil
}

func (d *CredentialDAO) FindByEvent(ctx context.Context, eventID uint) ([]Credential, error) {
	var credentials []Credential
	err := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("name ASC").Find(&credentials).Error
	if err != nil {
		return nil, err
	}
	return credentials, nil
}

// FindByName matches case-insensitively within the event.
func (d *CredentialDAO) FindByName(ctx context.Context, eventID uint, name string) (Credential, error) {
	var credential Credential
	err := d.db.WithContext(ctx).
		Where("event_id = ? AND LOWER(name) = ?", eventID, strings.ToLower(strings.TrimSpace(name))).
		First(&credential).Error
	if err != nil {
		return Credential{}, notFound(err, ErrCredentialNotFound)
	}
	return credential, nil
}

func (d *CredentialDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Credential{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// CountParticipants returns how many live participants hold each credential of the event.
func (d *CredentialDAO) CountParticipants(ctx context.Context, eventID uint) (map[uint]int64, error) {
	type row struct {
		CredentialID uint
		Count        int64
	}

	var rows []row
	err := d.db.WithContext(ctx).Model(&Participant{}).
		Select("credential_id, COUNT(*) AS count").
		Where("event_id = ? AND credential_id IS NOT NULL", eventID).
		Group("credential_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CredentialID] = r.Count
	}
	return counts, nil
}
