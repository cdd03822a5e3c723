package gradebook

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// WriteXLSX writes `res` as a spreadsheet: one row per student, one column per assessment,
// then the category percentages, the totals and the overall percentage.
// Cells without a score are left blank.
func WriteXLSX(w io.Writer, res Result) error {
	f := excelize.NewFile()
	categories := res.Categories()

	header := make([]interface{}, 0, 2+len(res.Assessments)+len(categories)+3)
	header = append(header, "Student", "Email")
	for _, col := range res.Assessments {
		header = append(header, fmt.Sprintf("%s (%g)", col.Title, col.MaxPoints))
	}
	for _, cat := range categories {
		header = append(header, fmt.Sprintf("%s %%", cat))
	}
	header = append(header, "Total Earned", "Total Possible", "Overall %")
	if err := writeRow(f, 1, header); err != nil {
		return err
	}

	for i, row := range res.Students {
		values := make([]interface{}, 0, len(header))
		values = append(values, row.Student.DisplayName(), row.Student.Email)
		for _, col := range res.Assessments {
			if cell := row.Grades[col.ID]; cell.Score != nil {
				values = append(values, *cell.Score)
			} else {
				values = append(values, nil)
			}
		}
		for _, cat := range categories {
			values = append(values, row.CategoryPercentages[cat])
		}
		values = append(values, row.TotalEarned, row.TotalPossible, row.OverallPercentage)
		if err := writeRow(f, i+2, values); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []interface{}) error {
	for i, val := range values {
		if val == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return errors.Wrap(err, "naming cell")
		}
		if err = f.SetCellValue(exportSheet, cell, val); err != nil {
			return errors.Wrapf(err, "setting cell %s", cell)
		}
	}
	return nil
}
