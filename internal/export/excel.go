// Package export renders a scheduler.Response as an Excel workbook: one
// master sheet with the whole block, and one sheet per staff member
// listing just their on-call days.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/clinicrota/oncallgen/internal/scheduler"
)

const dateLayout = "2006-01-02"

// Generate creates an Excel workbook from a successful scheduling response.
func Generate(resp *scheduler.Response) (*excelize.File, error) {
	if resp.Status != "success" {
		return nil, fmt.Errorf("cannot export a %q response", resp.Status)
	}

	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, resp); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}
	if err := writeStaffSheets(f, resp); err != nil {
		return nil, fmt.Errorf("writing staff sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeMasterSheet(f *excelize.File, resp *scheduler.Response) error {
	sheet := "Master Schedule"
	f.NewSheet(sheet)

	headers := []string{"Date", "Day", "On Call"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), style)
		}
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 14, Family: "Arial"}})

	for i, day := range resp.Schedule {
		row := i + 2
		parsed, err := time.Parse(dateLayout, day.Date)
		if err != nil {
			return fmt.Errorf("parsing schedule date %q: %w", day.Date, err)
		}

		f.SetCellValue(sheet, cellRef(1, row), parsed.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, row), parsed.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, row), day.Display())

		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(3, row), cellStyle)
		}
	}

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 32)

	return nil
}

func writeStaffSheets(f *excelize.File, resp *scheduler.Response) error {
	for name, tally := range resp.StaffAssignments {
		sheet := sheetName(name)
		f.NewSheet(sheet)

		headers := []string{"Date", "Day"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 1), h)
		}
		if style := headerStyle(f); style != 0 {
			for i := range headers {
				f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), style)
			}
		}

		cellStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 14, Family: "Arial"}})

		for i, d := range tally.Days {
			row := i + 2
			parsed, err := time.Parse(dateLayout, d)
			if err != nil {
				return fmt.Errorf("parsing assignment date %q for %s: %w", d, name, err)
			}
			f.SetCellValue(sheet, cellRef(1, row), parsed.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(2, row), parsed.Format("Mon"))
			if cellStyle != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(2, row), cellStyle)
			}
		}

		summaryRow := len(tally.Days) + 3
		f.SetCellValue(sheet, cellRef(1, summaryRow), fmt.Sprintf("Role: %s", tally.Role))
		f.SetCellValue(sheet, cellRef(1, summaryRow+1), fmt.Sprintf("Target: %d, Actual: %d", tally.Target, tally.Actual))
		f.SetCellValue(sheet, cellRef(1, summaryRow+2), fmt.Sprintf("Weekend shifts: %d, Friday shifts: %d", tally.WeekendShifts, tally.FridayShifts))

		f.SetColWidth(sheet, "A", "A", 16)
		f.SetColWidth(sheet, "B", "B", 8)
	}

	return nil
}

// sheetName truncates a staff name to Excel's 31-character sheet-name
// limit (counted in bytes). Characters Excel disallows in sheet names are
// not replaced. Staff names are expected to already be simple enough not
// to collide after truncation.
func sheetName(name string) string {
	const maxLen = 31
	if len(name) > maxLen {
		return name[:maxLen]
	}
	return name
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
