package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/credenciamento/event-api/internal/domain"
)

type RadioLoan struct {
	ID             uint   `gorm:"primaryKey"`
	EventID        uint   `gorm:"not null;index"`
	BorrowerName   string `gorm:"not null"`
	BorrowerCPF    string
	Company        string
	Phone          string
	Radios         []string               `gorm:"serializer:json"`
	ReturnedRadios []string               `gorm:"serializer:json"`
	Status         string                 `gorm:"not null;default:active;index"`
	PickedUpAt     time.Time              `gorm:"not null"`
	ReturnedAt     *time.Time
	Exchanges      []domain.RadioExchange `gorm:"serializer:json"`
	Returns        []domain.RadioReturn   `gorm:"serializer:json"`
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type RadioLoanQuery struct {
	EventID  uint
	Statuses []string
	Search   string
}

type RadioDAO struct {
	db *gorm.DB
}

func NewRadioDAO(db *gorm.DB) *RadioDAO {
	return &RadioDAO{db: db}
}

func (d *RadioDAO) Insert(ctx context.Context, loan RadioLoan) (RadioLoan, error) {
	if err := d.db.WithContext(ctx).Create(&loan).Error; err != nil {
		return RadioLoan{}, err
	}
	return loan, nil
}

func (d *RadioDAO) Update(ctx context.Context, loan RadioLoan) (RadioLoan, error) {
	if err := d.db.WithContext(ctx).Save(&loan).Error; err != nil {
		return RadioLoan{}, err
	}
	return loan, nil
}

func (d *RadioDAO) FindByID(ctx context.Context, id uint) (RadioLoan, error) {
	var loan RadioLoan
	if err := d.db.WithContext(ctx).First(&loan, id).Error; err != nil {
		return RadioLoan{}, notFound(err, ErrRadioLoanNotFound)
	}
	return loan, nil
}

func (d *RadioDAO) Find(ctx context.Context, q RadioLoanQuery) ([]RadioLoan, error) {
	tx := d.db.WithContext(ctx).Where("event_id = ?", q.EventID)
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("(LOWER(borrower_name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(radios) LIKE ?)", like, like, like)
	}

	var loans []RadioLoan
	if err := tx.Order("picked_up_at DESC, id DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}
