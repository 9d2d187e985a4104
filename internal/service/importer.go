package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/credenciamento/event-api/internal/config"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/metrics"
	"github.com/credenciamento/event-api/internal/pkg/cpf"
	"github.com/credenciamento/event-api/internal/pkg/spreadsheet"
	"github.com/credenciamento/event-api/internal/pkg/textnorm"
	"github.com/credenciamento/event-api/internal/repository"
)

var (
	ErrUnsupportedSpreadsheet = spreadsheet.ErrUnsupportedFormat
	ErrMissingColumn          = spreadsheet.ErrMissingColumn
	ErrEmptySpreadsheet       = spreadsheet.ErrEmptySheet
	ErrTooManyRows            = errors.New("spreadsheet has too many rows")
	ErrInvalidImportMode      = errors.New("import mode must be preview or commit")
)

type ImportParticipantRepository interface {
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error)
	Import(ctx context.Context, eventID uint, credentials []domain.Credential, rows []repository.ImportRow) ([]domain.Credential, []domain.Participant, error)
}

type CredentialLister interface {
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Credential, error)
}

type ImportService struct {
	participants ImportParticipantRepository
	credentials  CredentialLister
	events       EventReader
	conf         *config.ImportConfig
	metrics      *metrics.Registry
	audit        Auditor
	caches       Invalidator
}

func NewImportService(
	participants ImportParticipantRepository,
	credentials CredentialLister,
	events EventReader,
	conf *config.ImportConfig,
	m *metrics.Registry,
	audit Auditor,
	caches Invalidator,
) *ImportService {
	if audit == nil {
		audit = nopAuditor{}
	}
	if caches == nil {
		caches = nopInvalidator{}
	}
	return &ImportService{
		participants: participants,
		credentials:  credentials,
		events:       events,
		conf:         conf,
		metrics:      m,
		audit:        audit,
		caches:       caches,
	}
}

// importPlan is the outcome of matching the sheet against the event before
// anything is written.
type importPlan struct {
	report      domain.ImportReport
	credentials []domain.Credential
	rows        []repository.ImportRow
}

// Import reads a participant spreadsheet and matches it against the event.
// In preview mode nothing is written and the report tells what a commit
// would do.
func (s *ImportService) Import(ctx context.Context, actor domain.Actor, eventID uint, r io.Reader, filename string, opts domain.ImportOptions) (domain.ImportReport, error) {
	if opts.Mode == "" {
		opts.Mode = domain.ImportPreview
	}
	if opts.Mode != domain.ImportPreview && opts.Mode != domain.ImportCommit {
		return domain.ImportReport{}, ErrInvalidImportMode
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return domain.ImportReport{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	sheet, err := spreadsheet.ReadParticipants(r, filename)
	if err != nil {
		return domain.ImportReport{}, fmt.Errorf("spreadsheet.ReadParticipants -> %w", err)
	}
	if s.conf != nil && s.conf.MaxRows > 0 && len(sheet) > s.conf.MaxRows {
		return domain.ImportReport{}, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(sheet), s.conf.MaxRows)
	}

	existing, err := s.participants.FindByEvent(ctx, eventID)
	if err != nil {
		return domain.ImportReport{}, fmt.Errorf("s.participants.FindByEvent -> %w", err)
	}
	credentials, err := s.credentials.FindByEvent(ctx, eventID)
	if err != nil {
		return domain.ImportReport{}, fmt.Errorf("s.credentials.FindByEvent -> %w", err)
	}

	plan := s.plan(eventID, sheet, existing, credentials, opts)
	plan.report.BatchID = uuid.NewString()

	if opts.Mode == domain.ImportPreview {
		return plan.report, nil
	}

	if len(plan.rows) > 0 || len(plan.credentials) > 0 {
		if _, _, err = s.participants.Import(ctx, eventID, plan.credentials, plan.rows); err != nil {
			return domain.ImportReport{}, fmt.Errorf("s.participants.Import -> %w", err)
		}
		s.caches.InvalidateEvent(eventID)
	}

	if s.metrics != nil {
		for _, row := range plan.report.Rows {
			s.metrics.ImportRowsTotal.WithLabelValues(string(row.Status)).Inc()
		}
	}

	s.audit.Record(ctx, actor, eventRef(eventID), "import", 0, "commit", nil, map[string]any{
		"batch_id":            plan.report.BatchID,
		"created":             plan.report.Created,
		"updated":             plan.report.Updated,
		"duplicates":          plan.report.Duplicates,
		"invalid":             plan.report.Invalid,
		"created_credentials": plan.report.CreatedCredentials,
	})

	return plan.report, nil
}

func (s *ImportService) plan(
	eventID uint,
	sheet []spreadsheet.Row,
	existing []domain.Participant,
	credentials []domain.Credential,
	opts domain.ImportOptions,
) importPlan {
	plan := importPlan{
		report: domain.ImportReport{
			EventID:            eventID,
			Mode:               opts.Mode,
			TotalRows:          len(sheet),
			Rows:               make([]domain.ImportRowResult, 0, len(sheet)),
			UnknownCredentials: []string{},
			CreatedCredentials: []string{},
		},
	}

	byID := make(map[uint]domain.Participant, len(existing))
	byCPF := make(map[string]domain.Participant, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
		if p.CPF != "" {
			byCPF[p.CPF] = p
		}
	}

	known := make(map[string]domain.Credential, len(credentials))
	for _, c := range credentials {
		known[textnorm.Fold(c.Name)] = c
	}
	// folded name -> spelling of the first occurrence in the sheet
	unknown := make(map[string]string)

	seen := make(map[string]int)
	strict := s.conf != nil && s.conf.StrictCPF

	for _, row := range sheet {
		result := domain.ImportRowResult{Line: row.Line, Name: strings.TrimSpace(row.Name)}

		if result.Name == "" {
			result.Status = domain.ImportInvalid
			result.Message = "name is required"
			plan.report.Add(result)
			continue
		}

		var messages []string
		document := cpf.Normalize(row.CPF)
		if document != "" && !cpf.Valid(document) {
			if strict {
				result.Status = domain.ImportInvalid
				result.Message = fmt.Sprintf("invalid CPF %q", strings.TrimSpace(row.CPF))
				plan.report.Add(result)
				continue
			}
			messages = append(messages, fmt.Sprintf("invalid CPF %q ignored", strings.TrimSpace(row.CPF)))
			document = ""
		}
		result.CPF = document

		key := "cpf:" + document
		if document == "" {
			key = "name:" + textnorm.Fold(result.Name) + "|" + textnorm.Fold(row.Company)
		}
		if first, ok := seen[key]; ok {
			result.Status = domain.ImportDuplicateInFile
			result.Message = fmt.Sprintf("same participant as line %d", first)
			plan.report.Add(result)
			continue
		}
		seen[key] = row.Line

		target, found := matchExisting(row, document, byID, byCPF)
		if found {
			if other, ok := byCPF[document]; ok && document != "" && other.ID != target.ID {
				result.Status = domain.ImportInvalid
				result.Message = fmt.Sprintf("CPF belongs to participant %d", other.ID)
				plan.report.Add(result)
				continue
			}
			targetKey := "id:" + strconv.FormatUint(uint64(target.ID), 10)
			if first, ok := seen[targetKey]; ok {
				result.Status = domain.ImportDuplicateInFile
				result.Message = fmt.Sprintf("same participant as line %d", first)
				plan.report.Add(result)
				continue
			}
			seen[targetKey] = row.Line
		}
		if found && !opts.UpdateExisting {
			result.Status = domain.ImportDuplicateExisting
			result.Message = fmt.Sprintf("already registered as participant %d", target.ID)
			plan.report.Add(result)
			continue
		}

		p := domain.Participant{EventID: eventID, WorkDays: []string{}}
		if found {
			p = target
			p.Credential = nil
		}
		p.Name = result.Name
		p.CPF = document
		if found && document == "" {
			p.CPF = target.CPF
		}
		if role := strings.TrimSpace(row.Role); role != "" || !found {
			p.Role = role
		}
		if company := strings.TrimSpace(row.Company); company != "" || !found {
			p.Company = company
		}

		importRow := repository.ImportRow{}
		if name := strings.TrimSpace(row.CredentialType); name != "" {
			folded := textnorm.Fold(name)
			if c, ok := known[folded]; ok {
				id := c.ID
				p.CredentialID = &id
			} else {
				if _, ok := unknown[folded]; !ok {
					unknown[folded] = name
					plan.report.UnknownCredentials = append(plan.report.UnknownCredentials, name)
					if opts.CreateMissingCredentials {
						plan.credentials = append(plan.credentials, domain.Credential{
							EventID:  eventID,
							Name:     name,
							Color:    defaultCredentialColor,
							Active:   true,
							WorkDays: []string{},
						})
						plan.report.CreatedCredentials = append(plan.report.CreatedCredentials, name)
					}
				}
				if opts.CreateMissingCredentials {
					p.CredentialID = nil
					importRow.CredentialName = unknown[folded]
				} else {
					messages = append(messages, fmt.Sprintf("unknown credential %q", name))
				}
			}
		}

		result.Status = domain.ImportCreated
		if found {
			result.Status = domain.ImportUpdated
		}
		result.Message = strings.Join(messages, "; ")

		importRow.Participant = p
		plan.rows = append(plan.rows, importRow)
		plan.report.Add(result)
	}

	return plan
}

// matchExisting finds the registered participant a sheet row refers to,
// first by the id column and then by CPF.
func matchExisting(row spreadsheet.Row, document string, byID map[uint]domain.Participant, byCPF map[string]domain.Participant) (domain.Participant, bool) {
	if raw := strings.TrimSpace(row.ID); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			if p, ok := byID[uint(id)]; ok {
				return p, true
			}
		}
	}
	if document != "" {
		if p, ok := byCPF[document]; ok {
			return p, true
		}
	}
	return domain.Participant{}, false
}
