package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/cpf"
	"github.com/credenciamento/event-api/internal/pkg/spreadsheet"
)

const exportTimeLayout = "2006-01-02 15:04"

type ParticipantLister interface {
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error)
}

type DayReporter interface {
	DayReport(ctx context.Context, eventID uint, day string) ([]domain.AttendanceReportRow, error)
}

type LoanLister interface {
	ListLoans(ctx context.Context, eventID uint, filter domain.RadioLoanFilter) ([]domain.RadioLoan, error)
}

// ExportService renders event data as xlsx workbooks.
type ExportService struct {
	participants ParticipantLister
	events       EventReader
	attendance   DayReporter
	loans        LoanLister
	loc          *time.Location
}

func NewExportService(participants ParticipantLister, events EventReader, attendance DayReporter, loans LoanLister, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		participants: participants,
		events:       events,
		attendance:   attendance,
		loans:        loans,
		loc:          loc,
	}
}

// WriteTemplate writes the empty import workbook.
func (s *ExportService) WriteTemplate(w io.Writer) error {
	return spreadsheet.Write(w, spreadsheet.Template())
}

// ExportParticipants writes every participant of the event. The first
// columns follow the import header so the file can be edited and imported
// back.
func (s *ExportService) ExportParticipants(ctx context.Context, w io.Writer, eventID uint) error {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return fmt.Errorf("s.events.FindByID -> %w", err)
	}

	participants, err := s.participants.FindByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.participants.FindByEvent -> %w", err)
	}

	header := append(append([]string{}, spreadsheet.HeaderContract...), "status", "check_in", "check_out", "dias")
	sheet := spreadsheet.Sheet{Name: "participantes", Header: header, Rows: make([][]any, 0, len(participants))}
	for _, p := range participants {
		credential := ""
		if p.Credential != nil {
			credential = p.Credential.Name
		}
		sheet.Rows = append(sheet.Rows, []any{
			p.ID,
			p.Name,
			cpf.Format(p.CPF),
			p.Role,
			p.Company,
			credential,
			string(p.CurrentStatus()),
			s.formatTime(p.CheckIn),
			s.formatTime(p.CheckOut),
			strings.Join(p.WorkDays, ", "),
		})
	}

	return spreadsheet.Write(w, sheet)
}

// ExportAttendance writes the presence report of one day.
func (s *ExportService) ExportAttendance(ctx context.Context, w io.Writer, eventID uint, day string) error {
	rows, err := s.attendance.DayReport(ctx, eventID, day)
	if err != nil {
		return fmt.Errorf("s.attendance.DayReport -> %w", err)
	}

	sheet := spreadsheet.Sheet{
		Name:   "presenca " + day,
		Header: []string{spreadsheet.ColID, spreadsheet.ColName, spreadsheet.ColCPF, spreadsheet.ColCompany, "credencial", "status", "check_in", "check_out"},
		Rows:   make([][]any, 0, len(rows)),
	}
	for _, row := range rows {
		credential := ""
		if row.Participant.Credential != nil {
			credential = row.Participant.Credential.Name
		}
		sheet.Rows = append(sheet.Rows, []any{
			row.Participant.ID,
			row.Participant.Name,
			cpf.Format(row.Participant.CPF),
			row.Participant.Company,
			credential,
			string(row.Status),
			s.formatTime(row.CheckIn),
			s.formatTime(row.CheckOut),
		})
	}

	return spreadsheet.Write(w, sheet)
}

// ExportRadioLoans writes the loans of the event and the exchange log.
func (s *ExportService) ExportRadioLoans(ctx context.Context, w io.Writer, eventID uint) error {
	loans, err := s.loans.ListLoans(ctx, eventID, domain.RadioLoanFilter{})
	if err != nil {
		return fmt.Errorf("s.loans.ListLoans -> %w", err)
	}

	sheet := spreadsheet.Sheet{
		Name:   "radios",
		Header: []string{"id", "responsavel", "cpf", "empresa", "telefone", "radios", "devolvidos", "pendentes", "status", "retirada", "devolucao"},
		Rows:   make([][]any, 0, len(loans)),
	}
	exchanges := spreadsheet.Sheet{
		Name:   "trocas",
		Header: []string{"emprestimo", "radio_anterior", "radio_novo", "motivo", "data"},
	}
	for _, l := range loans {
		pickedUp := l.PickedUpAt
		sheet.Rows = append(sheet.Rows, []any{
			l.ID,
			l.BorrowerName,
			cpf.Format(l.BorrowerCPF),
			l.Company,
			l.Phone,
			strings.Join(l.Radios, ", "),
			strings.Join(l.ReturnedRadios, ", "),
			strings.Join(l.Outstanding(), ", "),
			string(l.Status),
			s.formatTime(&pickedUp),
			s.formatTime(l.ReturnedAt),
		})
		for _, e := range l.Exchanges {
			at := e.At
			exchanges.Rows = append(exchanges.Rows, []any{l.ID, e.OldCode, e.NewCode, e.Reason, s.formatTime(&at)})
		}
	}

	return spreadsheet.Write(w, sheet, exchanges)
}

func (s *ExportService) formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(exportTimeLayout)
}
