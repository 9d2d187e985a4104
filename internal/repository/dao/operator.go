package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/credenciamento/event-api/internal/domain"
)

type Operator struct {
	ID        uint                    `gorm:"primaryKey"`
	Name      string                  `gorm:"not null"`
	CPF       string                  `gorm:"not null;index:idx_operator_cpf,unique,where:deleted_at IS NULL"`
	Password  string                  `gorm:"not null"`
	EventIDs  []uint                  `gorm:"serializer:json"`
	Actions   []domain.OperatorAction `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type OperatorDAO struct {
	db *gorm.DB
}

func NewOperatorDAO(db *gorm.DB) *OperatorDAO {
	return &OperatorDAO{db: db}
}

func (d *OperatorDAO) Insert(ctx context.Context, operator Operator) (Operator, error) {
	if err := d.db.WithContext(ctx).Create(&operator).Error; err != nil {
		if isUniqueViolation(err) {
			return Operator{}, ErrOperatorCPFExists
		}
		return Operator{}, err
	}
	return operator, nil
}

// Update writes every column. UpdatedAt is kept as given so that client
// clocks take part in sync conflict resolution.
func (d *OperatorDAO) Update(ctx context.Context, operator Operator) (Operator, error) {
	tx := d.db.WithContext(ctx)
	if operator.UpdatedAt.IsZero() {
		operator.UpdatedAt = tx.NowFunc()
	}
	err := tx.Session(&gorm.Session{SkipHooks: true}).Model(&operator).
		Select("*").Omit("CreatedAt", "DeletedAt").
		UpdateColumns(&operator).Error
	if err != nil {
		if isUniqueViolation(err) {
			return Operator{}, ErrOperatorCPFExists
		}
		return Operator{}, err
	}
	return operator, nil
}

func (d *OperatorDAO) FindByID(ctx context.Context, id uint) (Operator, error) {
	var operator Operator
	if err := d.db.WithContext(ctx).First(&operator, id).Error; err != nil {
		return Operator{}, notFound(err, ErrOperatorNotFound)
	}
	return operator, nil
}

func (d *OperatorDAO) FindByCPF(ctx context.Context, cpf string) (Operator, error) {
	var operator Operator
	if err := d.db.WithContext(ctx).Where("cpf = ?", cpf).First(&operator).Error; err != nil {
		return Operator{}, notFound(err, ErrOperatorNotFound)
	}
	return operator, nil
}

func (d *OperatorDAO) Find(ctx context.Context, search string) ([]Operator, error) {
	tx := d.db.WithContext(ctx).Model(&Operator{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR cpf LIKE ?)", like, like)
	}

	var operators []Operator
	if err := tx.Order("name ASC, id ASC").Find(&operators).Error; err != nil {
		return nil, err
	}
	return operators, nil
}

func (d *OperatorDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Operator{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOperatorNotFound
	}
	return nil
}
