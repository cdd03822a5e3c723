package gradebook

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core/course"
)

func TestWriteXLSX(t *testing.T) {
	score := 8.5
	subID := "x1"
	res := Result{
		Assessments: []Column{
			{ID: "a1", Title: "Lab 1", Type: course.AssessmentLab, MaxPoints: 10},
			{ID: "a2", Title: "Quiz 1", Type: course.AssessmentQuiz, MaxPoints: 5},
		},
		Students: []Row{
			{
				Student: course.Person{ID: "s1", Name: "Ann", Email: "ann@school.edu"},
				Grades: map[string]Cell{
					"a1": {SubmissionID: &subID, Score: &score, Status: course.StatusGraded},
					"a2": notSubmittedCell(),
				},
				CategoryPercentages: map[course.AssessmentType]float64{course.AssessmentLab: 85, course.AssessmentQuiz: 0},
				OverallPercentage:   85,
				TotalEarned:         8.5,
				TotalPossible:       10,
			},
			{
				Student: course.Person{ID: "s2", Email: "bob@school.edu"},
				Grades:  map[string]Cell{"a1": notSubmittedCell(), "a2": notSubmittedCell()},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, res))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	tests := []struct {
		cell string
		want string
	}{
		{cell: "A1", want: "Student"},
		{cell: "B1", want: "Email"},
		{cell: "C1", want: "Lab 1 (10)"},
		{cell: "D1", want: "Quiz 1 (5)"},
		{cell: "E1", want: "LAB %"},
		{cell: "F1", want: "QUIZ %"},
		{cell: "G1", want: "Total Earned"},
		{cell: "H1", want: "Total Possible"},
		{cell: "I1", want: "Overall %"},
		{cell: "A2", want: "Ann"},
		{cell: "B2", want: "ann@school.edu"},
		{cell: "C2", want: "8.5"},
		{cell: "D2", want: ""},
		{cell: "E2", want: "85"},
		{cell: "G2", want: "8.5"},
		{cell: "I2", want: "85"},
		{cell: "A3", want: "bob@school.edu"},
		{cell: "C3", want: ""},
		{cell: "I3", want: "0"},
	}
	for _, tc := range tests {
		t.Run(tc.cell, func(t *testing.T) {
			got, err := f.GetCellValue(exportSheet, tc.cell)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
