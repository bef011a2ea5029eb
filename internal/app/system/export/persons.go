// Package export renders the person roll as an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet in the workbook.
const SheetName = "Personas"

var headers = []string{
	"ID", "Nombre", "Apellido", "Tipo", "Rol", "Estado",
	"Teléfono", "WhatsApp", "Email", "Fecha de nacimiento",
	"Fecha de ingreso", "Fecha de bautismo", "Familia", "Parentesco",
}

var widths = []float64{8, 18, 18, 14, 10, 12, 16, 16, 26, 18, 16, 18, 10, 14}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func row(p models.Person) []interface{} {
	family := ""
	if p.FamilyID != nil {
		family = fmt.Sprint(*p.FamilyID)
	}
	return []interface{}{
		p.ID, p.FirstName, p.LastName, string(p.Type), string(p.Role), string(p.Status),
		p.Phone, p.WhatsApp, p.Email, dateCell(p.BirthDate),
		dateCell(p.IntakeDate), dateCell(p.BaptismDate), family, p.FamilyRelationship,
	}
}

// Persons writes persons to an xlsx workbook with a styled, frozen header row.
func Persons(persons []models.Person) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, p := range persons {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row(p)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
