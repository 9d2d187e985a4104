package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/spreadsheet"
)

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportParticipantsRoundTrips(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	at := time.Date(2024, 7, 10, 9, 15, 0, 0, time.UTC)
	_, err := env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &at, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.exports.ExportParticipants(ctx, &buf, event.ID))

	rows := readSheet(t, buf.Bytes(), "participantes")
	require.Len(t, rows, 2)
	assert.Equal(t, spreadsheet.HeaderContract, rows[0][:len(spreadsheet.HeaderContract)])
	assert.Equal(t, "529.982.247-25", rows[1][2])
	assert.Equal(t, string(domain.StatusPresent), rows[1][6])
	assert.Equal(t, "2024-07-10 09:15", rows[1][7])

	// the exported file is a valid import file
	parsed, err := spreadsheet.ReadParticipants(bytes.NewReader(buf.Bytes()), "export.xlsx")
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Maria", parsed[0].Name)
}

func TestExportAttendanceAndRadios(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	env.createParticipant(t, event.ID, "Maria", validCPF)

	var attendance bytes.Buffer
	require.NoError(t, env.exports.ExportAttendance(ctx, &attendance, event.ID, "2024-07-10"))
	rows := readSheet(t, attendance.Bytes(), "presenca 2024-07-10")
	require.Len(t, rows, 2)
	assert.Equal(t, string(domain.StatusAbsent), rows[1][5])

	loan, err := env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "Som", Radios: []string{"R1", "R2"}})
	require.NoError(t, err)
	_, err = env.radios.ExchangeRadio(ctx, env.admin, event.ID, loan.ID, "R1", "R9", "quebrado")
	require.NoError(t, err)

	var radios bytes.Buffer
	require.NoError(t, env.exports.ExportRadioLoans(ctx, &radios, event.ID))
	loans := readSheet(t, radios.Bytes(), "radios")
	require.Len(t, loans, 2)
	assert.Equal(t, "R9, R2", loans[1][5])

	exchanges := readSheet(t, radios.Bytes(), "trocas")
	require.Len(t, exchanges, 2)
	assert.Equal(t, []string{"R1", "R9", "quebrado"}, exchanges[1][1:4])
}

func TestWriteTemplate(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	require.NoError(t, env.exports.WriteTemplate(&buf))

	rows := readSheet(t, buf.Bytes(), spreadsheet.TemplateSheet)
	require.Len(t, rows, 1)
	assert.Equal(t, spreadsheet.HeaderContract, rows[0])
}
