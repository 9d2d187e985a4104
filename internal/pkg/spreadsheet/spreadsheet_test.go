package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheets ...Sheet) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sheets...))
	return &buf
}

func TestReadParticipantsUsesModeloSheet(t *testing.T) {
	buf := workbook(t,
		Sheet{Name: "Instruções", Header: []string{"leia-me"}, Rows: [][]any{{"preencha a aba modelo"}}},
		Sheet{
			Name:   "Modelo",
			Header: []string{"ID", "Nome", "CPF", "Função", "Empresa", "Tipo Credencial"},
			Rows: [][]any{
				{"", "João da Silva", "529.982.247-25", "Segurança", "Acme", "Staff"},
				{"", "", "", "", "", ""},
				{"7", "Maria", "", "Produção", "Beta", ""},
			},
		},
	)

	rows, err := ReadParticipants(buf, "lista.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Line:           2,
		Name:           "João da Silva",
		CPF:            "529.982.247-25",
		Role:           "Segurança",
		Company:        "Acme",
		CredentialType: "Staff",
	}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "7", rows[1].ID)
}

func TestReadParticipantsFallsBackToFirstSheet(t *testing.T) {
	buf := workbook(t, Sheet{
		Name:   "Planilha1",
		Header: []string{"nome", "empresa"},
		Rows:   [][]any{{"Ana", "Gama"}},
	})

	rows, err := ReadParticipants(buf, "x.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].Name)
	assert.Equal(t, "Gama", rows[0].Company)
	assert.Empty(t, rows[0].CPF)
}

func TestReadParticipantsRequiresNameColumn(t *testing.T) {
	buf := workbook(t, Sheet{Name: "modelo", Header: []string{"cpf"}, Rows: [][]any{{"1"}}})

	_, err := ReadParticipants(buf, "x.xlsx")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadParticipantsRejectsLegacyXLS(t *testing.T) {
	_, err := ReadParticipants(strings.NewReader("whatever"), "lista.XLS")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadParticipants(bytes.NewReader(append(oleMagic, 0, 0)), "renamed.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadParticipants(strings.NewReader("not a zip"), "x.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteTemplate(t *testing.T) {
	buf := workbook(t, Template())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TemplateSheet}, f.GetSheetList())
	rows, err := f.GetRows(TemplateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, HeaderContract, rows[0])
}
