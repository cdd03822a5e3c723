package gradebook

import (
	"strconv"
	"time"

	"github.com/ericlagergren/decimal"

	"github.com/trezcool/gradebook/core/course"
)

type (
	// Cell is the grade of one student for one assessment.
	Cell struct {
		SubmissionID *string                 `json:"submissionId"`
		Score        *float64                `json:"score"`
		Status       course.SubmissionStatus `json:"status"`
		IsLate       bool                    `json:"isLate"`
	}

	// CategoryStats sums the scored work of a student in one category.
	CategoryStats struct {
		Earned   float64 `json:"earned"`
		Possible float64 `json:"possible"`
		Count    int     `json:"count"`
	}

	Row struct {
		Student             course.Person                           `json:"student"`
		Grades              map[string]Cell                         `json:"grades"` // {assessmentID: Cell}
		CategoryStats       map[course.AssessmentType]CategoryStats `json:"categoryStats"`
		CategoryPercentages map[course.AssessmentType]float64       `json:"categoryPercentages"`
		OverallPercentage   float64                                 `json:"overallPercentage"`
		TotalEarned         float64                                 `json:"totalEarned"`
		TotalPossible       float64                                 `json:"totalPossible"`
	}

	// Column is a gradable assessment, with the module it is published in (if any).
	Column struct {
		ID        string                `json:"id"`
		Title     string                `json:"title"`
		Type      course.AssessmentType `json:"type"`
		MaxPoints float64               `json:"maxPoints"`
		DueAt     *time.Time            `json:"dueAt"`
		Module    *course.Module        `json:"module"`
	}

	Result struct {
		Students    []Row    `json:"students"`
		Assessments []Column `json:"assessments"`
	}
)

func emptyResult() Result {
	return Result{Students: []Row{}, Assessments: []Column{}}
}

func notSubmittedCell() Cell {
	return Cell{Status: course.StatusNotSubmitted}
}

// Categories returns the distinct assessment types of the columns, in column order.
func (res Result) Categories() []course.AssessmentType {
	seen := make(map[course.AssessmentType]bool)
	types := make([]course.AssessmentType, 0)
	for _, col := range res.Assessments {
		if !seen[col.Type] {
			seen[col.Type] = true
			types = append(types, col.Type)
		}
	}
	return types
}

// tally accumulates exact decimal points for one category (or a whole row).
type tally struct {
	earned   decimal.Big
	possible decimal.Big
	count    int
}

func (t *tally) add(score, maxPoints *decimal.Big) {
	t.earned.Add(&t.earned, score)
	if maxPoints != nil {
		t.possible.Add(&t.possible, maxPoints)
	}
	t.count++
}

func (t *tally) merge(other *tally) {
	t.earned.Add(&t.earned, &other.earned)
	t.possible.Add(&t.possible, &other.possible)
	t.count += other.count
}

func (t *tally) stats() CategoryStats {
	return CategoryStats{
		Earned:   toFloat(&t.earned),
		Possible: toFloat(&t.possible),
		Count:    t.count,
	}
}

// percentage is 0 when nothing is possible.
func (t *tally) percentage() float64 {
	if t.possible.Sign() <= 0 {
		return 0
	}
	return toFloat(&t.earned) / toFloat(&t.possible) * 100
}

func toFloat(d *decimal.Big) float64 {
	if d == nil {
		return 0
	}
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

func toFloatPtr(d *decimal.Big) *float64 {
	if d == nil {
		return nil
	}
	f := toFloat(d)
	return &f
}
