// Package spreadsheet reads and writes the xlsx files exchanged with the
// dashboard: the participant import contract and the report exports.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/credenciamento/event-api/internal/pkg/textnorm"
)

const TemplateSheet = "modelo"

const (
	ColID             = "id"
	ColName           = "nome"
	ColCPF            = "cpf"
	ColRole           = "funcao"
	ColCompany        = "empresa"
	ColCredentialType = "tipo_credencial"
)

// HeaderContract is the column order of the import template.
var HeaderContract = []string{ColID, ColName, ColCPF, ColRole, ColCompany, ColCredentialType}

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format, use .xlsx")
	ErrMissingColumn     = errors.New("missing required column")
	ErrEmptySheet        = errors.New("spreadsheet has no header row")
)

// oleMagic starts legacy BIFF (.xls) files.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Row is one participant line of an import file. Line is the 1-based row
// number in the sheet.
type Row struct {
	Line           int
	ID             string
	Name           string
	CPF            string
	Role           string
	Company        string
	CredentialType string
}

func (r Row) IsBlank() bool {
	return strings.TrimSpace(r.ID+r.Name+r.CPF+r.Role+r.Company+r.CredentialType) == ""
}

// ReadParticipants parses an import file. The sheet named "modelo" is
// used when present, otherwise the first sheet.
func ReadParticipants(r io.Reader, filename string) ([]Row, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xls") {
		return nil, ErrUnsupportedFormat
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll -> %w", err)
	}
	if bytes.HasPrefix(data, oleMagic) {
		return nil, ErrUnsupportedFormat
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("f.GetRows -> %w", err)
	}

	headerAt := -1
	for i, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptySheet
	}

	columns := mapHeader(rows[headerAt])
	if _, ok := columns[ColName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColName)
	}

	cell := func(row []string, col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var out []Row
	for i := headerAt + 1; i < len(rows); i++ {
		row := Row{
			Line:           i + 1,
			ID:             cell(rows[i], ColID),
			Name:           cell(rows[i], ColName),
			CPF:            cell(rows[i], ColCPF),
			Role:           cell(rows[i], ColRole),
			Company:        cell(rows[i], ColCompany),
			CredentialType: cell(rows[i], ColCredentialType),
		}
		if row.IsBlank() {
			continue
		}
		out = append(out, row)
	}

	return out, nil
}

func pickSheet(sheets []string) string {
	for _, s := range sheets {
		if textnorm.Fold(s) == TemplateSheet {
			return s
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.NewReplacer(" ", "_", "-", "_").Replace(textnorm.Fold(h))
		if _, dup := columns[key]; !dup && key != "" {
			columns[key] = i
		}
	}
	return columns
}

// Sheet is a table to be written as one worksheet.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Template returns the empty import sheet.
func Template() Sheet {
	return Sheet{Name: TemplateSheet, Header: HeaderContract}
}

// Write renders the sheets as one xlsx workbook.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("f.NewStyle -> %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("f.SetSheetName -> %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("f.NewSheet -> %w", err)
		}

		if err := writeSheet(f, sheet, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("f.Write -> %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("f.SetSheetRow -> %w", err)
	}

	if len(sheet.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sheet.Header), 1)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("f.SetCellStyle -> %w", err)
		}
		if err := f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("f.SetPanes -> %w", err)
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("f.SetSheetRow -> %w", err)
		}
	}

	return nil
}
