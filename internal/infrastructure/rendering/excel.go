package rendering

import (
	"context"
	"fmt"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

// ExcelRenderer serializes reports into xlsx workbooks. Key figures go on
// a summary sheet; each report table gets its own sheet.
type ExcelRenderer struct{}

// NewExcelRenderer creates an Excel renderer
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

// Format returns the output format this renderer produces
func (r *ExcelRenderer) Format() report.Format {
	return report.FormatExcel
}

// Render writes the report into an xlsx workbook
func (r *ExcelRenderer) Render(ctx context.Context, data *report.ReportData) ([]byte, error) {
	if data == nil {
		return nil, NewRenderError(ErrCodeInvalidData, "report data is nil", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to create header style", err)
	}

	if err := r.writeSummarySheet(f, data, headerStyle); err != nil {
		return nil, err
	}

	for _, table := range data.Tables {
		if err := r.writeTableSheet(f, table, headerStyle); err != nil {
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex("Summary")
	if err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write workbook", err)
	}
	return buf.Bytes(), nil
}

// writeSummarySheet renames the default sheet and fills it with report
// metadata and key figures.
func (r *ExcelRenderer) writeSummarySheet(f *excelize.File, data *report.ReportData, headerStyle int) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return NewRenderError(ErrCodeRenderFailed, "failed to rename summary sheet", err)
	}

	f.SetCellValue(sheet, "A1", data.Title)
	f.SetCellValue(sheet, "A2", "Period")
	f.SetCellValue(sheet, "B2", formatDate(data.Meta.PeriodStart)+" - "+formatDate(data.Meta.PeriodEnd))
	f.SetCellValue(sheet, "A3", "Generated")
	f.SetCellValue(sheet, "B3", formatDateTime(data.Meta.GeneratedAt))
	if data.Meta.GeneratedBy != "" {
		f.SetCellValue(sheet, "A4", "Generated By")
		f.SetCellValue(sheet, "B4", data.Meta.GeneratedBy)
	}

	row := 6
	if len(data.KeyFigures) > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Metric")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Value")
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
		row++
		for _, kf := range data.KeyFigures {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kf.Label)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kf.Value)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 28)
	return nil
}

// writeTableSheet adds one sheet per table with a styled header row
func (r *ExcelRenderer) writeTableSheet(f *excelize.File, table report.Table, headerStyle int) error {
	sheet := sheetName(table.Title)
	if _, err := f.NewSheet(sheet); err != nil {
		return NewRenderError(ErrCodeRenderFailed, "failed to create sheet "+sheet, err)
	}

	for i, col := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return NewRenderError(ErrCodeRenderFailed, "invalid column index", err)
		}
		f.SetCellValue(sheet, cell, col)
	}
	if len(table.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Columns), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)

		endCol, _ := excelize.ColumnNumberToName(len(table.Columns))
		f.SetColWidth(sheet, "A", endCol, 20)
	}

	for rowIdx, rowData := range table.Rows {
		for colIdx, value := range rowData {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return NewRenderError(ErrCodeRenderFailed, "invalid cell coordinates", err)
			}
			f.SetCellValue(sheet, cell, value)
		}
	}
	return nil
}

// sheetName trims a table title to Excel's 31-character sheet name limit
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
