package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Participant struct {
	ID      uint   `gorm:"primaryKey"`
	EventID uint   `gorm:"not null;index;index:idx_participant_event_cpf,unique,where:cpf <> '' AND deleted_at IS NULL"`
	Name    string `gorm:"not null"`
	CPF     string `gorm:"index:idx_participant_event_cpf,unique,where:cpf <> '' AND deleted_at IS NULL"`

	Document string
	Email    string
	Phone    string
	Company  string `gorm:"index"`
	Role     string

	CredentialID *uint `gorm:"index"`
	Credential   *Credential

	CheckIn  *time.Time
	CheckOut *time.Time
	WorkDays []string `gorm:"serializer:json"`
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Status filter values understood by ParticipantQuery.
const (
	StatusPresent    = "present"
	StatusCheckedOut = "checked_out"
	StatusAbsent     = "absent"
)

type ParticipantQuery struct {
	EventID      uint
	CredentialID *uint
	Company      string
	Status       string
	WorkDay      string
	Page         int
	PageSize     int
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{db: db}
}

func (d *ParticipantDAO) Insert(ctx context.Context, participant Participant) (Participant, error) {
	participant.Credential = nil
	if err := d.db.WithContext(ctx).Create(&participant).Error; err != nil {
		if isUniqueViolation(err) {
			return Participant{}, ErrParticipantCPFExists
		}
		return Participant{}, err
	}
	return participant, nil
}

func (d *ParticipantDAO) Update(ctx context.Context, participant Participant) (Participant, error) {
	participant.Credential = nil
	err := d.db.WithContext(ctx).Model(&participant).
		Select("*").Omit("CreatedAt", "DeletedAt", "Credential").
		Updates(&participant).Error
	if err != nil {
		if isUniqueViolation(err) {
			return Participant{}, ErrParticipantCPFExists
		}
		return Participant{}, err
	}
	return participant, nil
}

func (d *ParticipantDAO) FindByID(ctx context.Context, id uint) (Participant, error) {
	var participant Participant
	if err := d.db.WithContext(ctx).Preload("Credential").First(&participant, id).Error; err != nil {
		return Participant{}, notFound(err, ErrParticipantNotFound)
	}
	return participant, nil
}

// FindByIDs keeps the order of ids.
func (d *ParticipantDAO) FindByIDs(ctx context.Context, ids []uint) ([]Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []Participant
	if err := d.db.WithContext(ctx).Preload("Credential").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]Participant, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]Participant, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (d *ParticipantDAO) FindByCPF(ctx context.Context, eventID uint, cpf string) (Participant, error) {
	var participant Participant
	err := d.db.WithContext(ctx).Where("event_id = ? AND cpf = ?", eventID, cpf).First(&participant).Error
	if err != nil {
		return Participant{}, notFound(err, ErrParticipantNotFound)
	}
	return participant, nil
}

// FindByEvent loads every live participant of the event, ordered by name.
func (d *ParticipantDAO) FindByEvent(ctx context.Context, eventID uint) ([]Participant, error) {
	var participants []Participant
	err := d.db.WithContext(ctx).Preload("Credential").
		Where("event_id = ?", eventID).
		Order("name ASC, id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (d *ParticipantDAO) List(ctx context.Context, q ParticipantQuery) ([]Participant, int64, error) {
	var total int64
	if err := d.filter(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var participants []Participant
	err := d.filter(ctx, q).
		Preload("Credential").
		Order("name ASC, id ASC").
		Scopes(paginate(q.Page, q.PageSize)).
		Find(&participants).Error
	if err != nil {
		return nil, 0, err
	}
	return participants, total, nil
}

// ListIDs returns the ids matching q, ignoring pagination.
func (d *ParticipantDAO) ListIDs(ctx context.Context, q ParticipantQuery) ([]uint, error) {
	var ids []uint
	if err := d.filter(ctx, q).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (d *ParticipantDAO) filter(ctx context.Context, q ParticipantQuery) *gorm.DB {
	tx := d.db.WithContext(ctx).Model(&Participant{}).Where("event_id = ?", q.EventID)

	if q.CredentialID != nil {
		tx = tx.Where("credential_id = ?", *q.CredentialID)
	}
	if q.Company != "" {
		tx = tx.Where("LOWER(company) = ?", strings.ToLower(strings.TrimSpace(q.Company)))
	}
	if q.WorkDay != "" {
		tx = tx.Where("work_days LIKE ?", `%"`+q.WorkDay+`"%`)
	}

	switch q.Status {
	case StatusPresent:
		tx = tx.Where("check_in IS NOT NULL AND (check_out IS NULL OR check_out < check_in)")
	case StatusCheckedOut:
		tx = tx.Where("check_in IS NOT NULL AND check_out IS NOT NULL AND check_out >= check_in")
	case StatusAbsent:
		tx = tx.Where("check_in IS NULL")
	}

	return tx
}

func (d *ParticipantDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Participant{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// ImportRow is a participant to write during an import. CredentialName is
// resolved against the credentials created in the same batch when
// Participant.CredentialID is not set.
type ImportRow struct {
	Participant    Participant
	CredentialName string
}

type ImportBatch struct {
	EventID     uint
	Credentials []Credential
	Rows        []ImportRow
}

type ImportResult struct {
	Credentials  []Credential
	Participants []Participant
}

// Import writes a whole import batch in a single transaction. Rows with a
// non-zero ID update the existing participant.
func (d *ParticipantDAO) Import(ctx context.Context, batch ImportBatch) (ImportResult, error) {
	var result ImportResult

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]uint, len(batch.Credentials))
		for _, c := range batch.Credentials {
			c.EventID = batch.EventID
			if err := tx.Create(&c).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrCredentialNameExists
				}
				return err
			}
			byName[strings.ToLower(c.Name)] = c.ID
			result.Credentials = append(result.Credentials, c)
		}

		for _, row := range batch.Rows {
			p := row.Participant
			p.EventID = batch.EventID
			p.Credential = nil
			if p.CredentialID == nil && row.CredentialName != "" {
				if id, ok := byName[strings.ToLower(row.CredentialName)]; ok {
					p.CredentialID = &id
				}
			}

			var err error
			if p.ID == 0 {
				err = tx.Create(&p).Error
			} else {
				err = tx.Model(&p).Select("*").Omit("CreatedAt", "DeletedAt", "Credential", "CheckIn", "CheckOut").Updates(&p).Error
			}
			if err != nil {
				if isUniqueViolation(err) {
					return ErrParticipantCPFExists
				}
				return err
			}
			result.Participants = append(result.Participants, p)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	return result, nil
}

type StatusCounts struct {
	Total      int64
	Present    int64
	CheckedOut int64
	Absent     int64
}

func (d *ParticipantDAO) CountByStatus(ctx context.Context, eventID uint) (StatusCounts, error) {
	var counts StatusCounts
	for status, dst := range map[string]*int64{
		"":               &counts.Total,
		StatusPresent:    &counts.Present,
		StatusCheckedOut: &counts.CheckedOut,
		StatusAbsent:     &counts.Absent,
	} {
		if err := d.filter(ctx, ParticipantQuery{EventID: eventID, Status: status}).Count(dst).Error; err != nil {
			return StatusCounts{}, err
		}
	}
	return counts, nil
}

type LabelCount struct {
	Label string
	Count int64
}

// CountByCredential groups participants by credential name. Participants
// without credential are reported under an empty label.
func (d *ParticipantDAO) CountByCredential(ctx context.Context, eventID uint) ([]LabelCount, error) {
	var rows []LabelCount
	err := d.db.WithContext(ctx).Model(&Participant{}).
		Select("COALESCE(credentials.name, '') AS label, COUNT(*) AS count").
		Joins("LEFT JOIN credentials ON credentials.id = participants.credential_id AND credentials.deleted_at IS NULL").
		Where("participants.event_id = ?", eventID).
		Group("COALESCE(credentials.name, '')").
		Order("count DESC, label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *ParticipantDAO) CountByCompany(ctx context.Context, eventID uint, limit int) ([]LabelCount, error) {
	var rows []LabelCount
	err := d.db.WithContext(ctx).Model(&Participant{}).
		Select("company AS label, COUNT(*) AS count").
		Where("event_id = ? AND company <> ''", eventID).
		Group("company").
		Order("count DESC, label ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
