package gradebook

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/course"
)

// Builder computes class gradebooks.
// It performs no authorization: callers must check access to the class first.
type Builder struct {
	repo   course.Repository
	logger core.Logger
}

func NewBuilder(repo course.Repository, logger core.Logger) *Builder {
	return &Builder{repo: repo, logger: logger}
}

type gradeKey struct {
	assessmentID string
	studentID    string
}

// Build returns the dense grade grid of the class: one row per actively enrolled student,
// one column per gradable assessment, and a cell for every pair even without a submission.
func (b *Builder) Build(ctx context.Context, classID string) (Result, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return emptyResult(), nil
	}
	sel := course.Selection{ClassID: &classID}

	var (
		enrollments []course.Enrollment
		assessments []course.Assessment
		links       []course.ModuleLink
		submissions []course.Submission
	)
	// one batch per entity, joined in memory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enrollments, err = b.repo.QueryEnrollments(gctx, course.BuildEnrollmentPredicate(sel).Active())
		return errors.Wrap(err, "querying enrollments")
	})
	g.Go(func() error {
		var err error
		assessments, err = b.repo.QueryAssessments(gctx, course.BuildAssessmentPredicate(sel).Gradable())
		return errors.Wrap(err, "querying assessments")
	})
	g.Go(func() error {
		var err error
		links, err = b.repo.QueryModuleLinks(gctx, course.BuildAssessmentPredicate(sel).Gradable())
		return errors.Wrap(err, "querying module links")
	})
	g.Go(func() error {
		var err error
		submissions, err = b.repo.QuerySubmissions(gctx, course.BuildSubmissionPredicate(sel))
		return errors.Wrap(err, "querying submissions")
	})
	if err := g.Wait(); err != nil {
		return emptyResult(), err
	}

	return b.assemble(classID, enrollments, assessments, links, submissions), nil
}

func (b *Builder) assemble(
	classID string,
	enrollments []course.Enrollment,
	assessments []course.Assessment,
	links []course.ModuleLink,
	submissions []course.Submission,
) Result {
	students := activeStudents(classID, enrollments)
	columns := gradableAssessments(classID, assessments)
	grades := b.indexSubmissions(submissions)

	res := Result{
		Students:    make([]Row, 0, len(students)),
		Assessments: make([]Column, 0, len(columns)),
	}

	modules := firstModules(links)
	for _, a := range columns {
		col := Column{
			ID:        a.ID,
			Title:     a.Title,
			Type:      a.Type,
			MaxPoints: toFloat(a.MaxPoints),
			DueAt:     a.DueAt,
		}
		if m, ok := modules[a.ID]; ok {
			m := m
			col.Module = &m
		}
		res.Assessments = append(res.Assessments, col)
	}

	for _, student := range students {
		row := Row{
			Student:             student,
			Grades:              make(map[string]Cell, len(columns)),
			CategoryStats:       make(map[course.AssessmentType]CategoryStats),
			CategoryPercentages: make(map[course.AssessmentType]float64),
		}
		categories := make(map[course.AssessmentType]*tally)

		for _, a := range columns {
			cat, ok := categories[a.Type]
			if !ok {
				cat = new(tally)
				categories[a.Type] = cat
			}

			sub, ok := grades[gradeKey{assessmentID: a.ID, studentID: student.ID}]
			if !ok {
				row.Grades[a.ID] = notSubmittedCell()
				continue
			}
			subID := sub.ID
			row.Grades[a.ID] = Cell{
				SubmissionID: &subID,
				Score:        toFloatPtr(sub.TotalScore),
				Status:       sub.Status,
				IsLate:       sub.IsLate,
			}
			// ungraded work counts neither as earned nor as possible
			if sub.TotalScore != nil {
				cat.add(sub.TotalScore, a.MaxPoints)
			}
		}

		total := new(tally)
		for typ, cat := range categories {
			row.CategoryStats[typ] = cat.stats()
			row.CategoryPercentages[typ] = cat.percentage()
			total.merge(cat)
		}
		row.TotalEarned = toFloat(&total.earned)
		row.TotalPossible = toFloat(&total.possible)
		row.OverallPercentage = total.percentage()

		res.Students = append(res.Students, row)
	}
	return res
}

// activeStudents returns the actively enrolled students of the class, once each,
// ordered by display name.
func activeStudents(classID string, enrollments []course.Enrollment) []course.Person {
	seen := make(map[string]bool, len(enrollments))
	students := make([]course.Person, 0, len(enrollments))
	for _, e := range enrollments {
		if !e.IsActive() || e.ClassID != classID || seen[e.StudentID] {
			continue
		}
		seen[e.StudentID] = true
		student := e.Student
		student.ID = e.StudentID
		students = append(students, student)
	}
	sort.SliceStable(students, func(i, j int) bool {
		ni, nj := students[i].DisplayName(), students[j].DisplayName()
		if ni != nj {
			return ni < nj
		}
		return students[i].ID < students[j].ID
	})
	return students
}

// gradableAssessments returns the gradebook columns ordered by type, then due date
// (undated last), then by the persisted ordering: order index, creation time and id.
func gradableAssessments(classID string, assessments []course.Assessment) []course.Assessment {
	seen := make(map[string]bool, len(assessments))
	cols := make([]course.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if !a.IncludeInGradebook || a.ClassID != classID || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		cols = append(cols, a)
	}
	sort.SliceStable(cols, func(i, j int) bool {
		a, b := cols[i], cols[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		switch {
		case a.DueAt != nil && b.DueAt != nil:
			if !a.DueAt.Equal(*b.DueAt) {
				return a.DueAt.Before(*b.DueAt)
			}
		case a.DueAt != nil:
			return true
		case b.DueAt != nil:
			return false
		}
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return cols
}

// indexSubmissions keys submissions by (assessment, student).
// Duplicates are never summed: the most recently updated one wins (ties: lowest id).
func (b *Builder) indexSubmissions(submissions []course.Submission) map[gradeKey]course.Submission {
	idx := make(map[gradeKey]course.Submission, len(submissions))
	for _, sub := range submissions {
		key := gradeKey{assessmentID: sub.AssessmentID, studentID: sub.StudentID}
		prev, ok := idx[key]
		if !ok {
			idx[key] = sub
			continue
		}
		if b.logger != nil {
			b.logger.Warn("duplicate submissions", map[string]interface{}{
				"assessment_id":  sub.AssessmentID,
				"student_id":     sub.StudentID,
				"submission_ids": []string{prev.ID, sub.ID},
			})
		}
		if sub.UpdatedAt.After(prev.UpdatedAt) || (sub.UpdatedAt.Equal(prev.UpdatedAt) && sub.ID < prev.ID) {
			idx[key] = sub
		}
	}
	return idx
}

// firstModules keeps the first module linked to each assessment.
func firstModules(links []course.ModuleLink) map[string]course.Module {
	modules := make(map[string]course.Module, len(links))
	for _, l := range links {
		if _, ok := modules[l.AssessmentID]; !ok {
			modules[l.AssessmentID] = l.Module
		}
	}
	return modules
}
