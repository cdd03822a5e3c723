package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/course"
)

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

type (
	classRow struct {
		ID             string      `boil:"id"`
		CourseID       string      `boil:"course_id"`
		ProfessorID    string      `boil:"professor_id"`
		Term           string      `boil:"term"`
		Year           int         `boil:"year"`
		Section        string      `boil:"section"`
		CourseCode     string      `boil:"course_code"`
		CourseTitle    string      `boil:"course_title"`
		ProfessorName  null.String `boil:"professor_name"`
		ProfessorEmail null.String `boil:"professor_email"`
	}

	enrollmentRow struct {
		ID           string      `boil:"id"`
		ClassID      string      `boil:"class_id"`
		StudentID    string      `boil:"student_id"`
		Status       string      `boil:"status"`
		StudentName  null.String `boil:"student_name"`
		StudentEmail null.String `boil:"student_email"`
	}

	assessmentRow struct {
		ID                 string            `boil:"id"`
		ClassID            string            `boil:"class_id"`
		Title              string            `boil:"title"`
		Type               string            `boil:"type"`
		MaxPoints          types.NullDecimal `boil:"max_points"`
		IncludeInGradebook bool              `boil:"include_in_gradebook"`
		DueAt              null.Time         `boil:"due_at"`
		OrderIndex         int               `boil:"order_index"`
		CreatedAt          time.Time         `boil:"created_at"`
		CourseCode         string            `boil:"course_code"`
	}

	moduleLinkRow struct {
		AssessmentID     string `boil:"assessment_id"`
		ModuleID         string `boil:"module_id"`
		ModuleTitle      string `boil:"module_title"`
		ModuleOrderIndex int    `boil:"module_order_index"`
	}

	submissionRow struct {
		ID           string            `boil:"id"`
		AssessmentID string            `boil:"assessment_id"`
		StudentID    string            `boil:"student_id"`
		TotalScore   types.NullDecimal `boil:"total_score"`
		Status       string            `boil:"status"`
		IsLate       bool              `boil:"is_late"`
		UpdatedAt    time.Time         `boil:"updated_at"`
	}
)

// classMods maps a class predicate to where clauses on the "classes" table.
// `ok` is false when no class can match.
func classMods(p course.ClassPredicate) (mods []qm.QueryMod, ok bool) {
	if p.Term != nil {
		mods = append(mods, qm.Where("classes.term = ?", string(*p.Term)))
	}
	if p.Year != nil {
		mods = append(mods, qm.Where("classes.year = ?", *p.Year))
	}
	return whereIDsEq(mods,
		idEq{"classes.professor_id", p.ProfessorID},
		idEq{"classes.course_id", p.CourseID},
		idEq{"classes.id", p.ClassID},
	)
}

// scopeMods maps the class scope of a nested predicate: the class predicate and the class id set.
func scopeMods(class *course.ClassPredicate, classIDs []string) (mods []qm.QueryMod, ok bool) {
	if class != nil {
		if mods, ok = classMods(*class); !ok {
			return nil, false
		}
	}
	if classIDs != nil {
		mod, ok := whereIDIn("classes.id", classIDs)
		if !ok {
			return nil, false
		}
		mods = append(mods, mod)
	}
	return mods, true
}

func assessmentMods(p course.AssessmentPredicate) ([]qm.QueryMod, bool) {
	mods, ok := scopeMods(p.Class, p.ClassIDs)
	if !ok {
		return nil, false
	}
	if p.GradableOnly {
		mods = append(mods, qm.Where("assessments.include_in_gradebook = ?", true))
	}
	return mods, true
}

func (repo courseRepository) QueryClasses(ctx context.Context, pred course.ClassPredicate) ([]course.ClassSection, error) {
	where, ok := classMods(pred)
	if !ok {
		return []course.ClassSection{}, nil
	}
	mods := []qm.QueryMod{
		qm.Select(
			"classes.id AS id",
			"classes.course_id AS course_id",
			"classes.professor_id AS professor_id",
			"classes.term AS term",
			"classes.year AS year",
			"classes.section AS section",
			"courses.code AS course_code",
			"courses.title AS course_title",
			"users.name AS professor_name",
			"users.email AS professor_email",
		),
		qm.From("classes"),
		qm.InnerJoin("courses ON courses.id = classes.course_id"),
		qm.InnerJoin("users ON users.id = classes.professor_id"),
	}
	mods = append(mods, where...)
	mods = append(mods, qm.OrderBy("courses.code, classes.section, classes.id"))

	var rows []classRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	classes := make([]course.ClassSection, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, course.ClassSection{
			ID:          r.ID,
			CourseID:    r.CourseID,
			ProfessorID: r.ProfessorID,
			Term:        course.Term(r.Term),
			Year:        r.Year,
			Section:     r.Section,
			Course:      course.Course{ID: r.CourseID, Code: r.CourseCode, Title: r.CourseTitle},
			Professor:   course.Person{ID: r.ProfessorID, Name: r.ProfessorName.String, Email: r.ProfessorEmail.String},
		})
	}
	return classes, nil
}

func (repo courseRepository) QueryEnrollments(ctx context.Context, pred course.EnrollmentPredicate) ([]course.Enrollment, error) {
	where, ok := scopeMods(pred.Class, pred.ClassIDs)
	if !ok {
		return []course.Enrollment{}, nil
	}
	mods := []qm.QueryMod{
		qm.Select(
			"enrollments.id AS id",
			"enrollments.class_id AS class_id",
			"enrollments.student_id AS student_id",
			"enrollments.status AS status",
			"users.name AS student_name",
			"users.email AS student_email",
		),
		qm.From("enrollments"),
		qm.InnerJoin("classes ON classes.id = enrollments.class_id"),
		qm.InnerJoin("users ON users.id = enrollments.student_id"),
	}
	mods = append(mods, where...)
	if pred.ActiveOnly {
		mods = append(mods, qm.Where("enrollments.status = ?", string(course.EnrollmentActive)))
	}
	mods = append(mods, qm.OrderBy("enrollments.id"))

	var rows []enrollmentRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	enrollments := make([]course.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrollments = append(enrollments, course.Enrollment{
			ID:        r.ID,
			ClassID:   r.ClassID,
			StudentID: r.StudentID,
			Status:    course.EnrollmentStatus(r.Status),
			Student:   course.Person{ID: r.StudentID, Name: r.StudentName.String, Email: r.StudentEmail.String},
		})
	}
	return enrollments, nil
}

func (repo courseRepository) QueryAssessments(ctx context.Context, pred course.AssessmentPredicate) ([]course.Assessment, error) {
	where, ok := assessmentMods(pred)
	if !ok {
		return []course.Assessment{}, nil
	}
	mods := []qm.QueryMod{
		qm.Select(
			"assessments.id AS id",
			"assessments.class_id AS class_id",
			"assessments.title AS title",
			"assessments.type AS type",
			"assessments.max_points AS max_points",
			"assessments.include_in_gradebook AS include_in_gradebook",
			"assessments.due_at AS due_at",
			"assessments.order_index AS order_index",
			"assessments.created_at AS created_at",
			"courses.code AS course_code",
		),
		qm.From("assessments"),
		qm.InnerJoin("classes ON classes.id = assessments.class_id"),
		qm.InnerJoin("courses ON courses.id = classes.course_id"),
	}
	mods = append(mods, where...)
	mods = append(mods, qm.OrderBy("assessments.order_index, assessments.created_at, assessments.id"))

	var rows []assessmentRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}

	assessments := make([]course.Assessment, 0, len(rows))
	for _, r := range rows {
		assessments = append(assessments, course.Assessment{
			ID:                 r.ID,
			ClassID:            r.ClassID,
			Title:              r.Title,
			Type:               course.AssessmentType(r.Type),
			MaxPoints:          r.MaxPoints.Big,
			IncludeInGradebook: r.IncludeInGradebook,
			DueAt:              r.DueAt.Ptr(),
			OrderIndex:         r.OrderIndex,
			CreatedAt:          r.CreatedAt,
			CourseCode:         r.CourseCode,
		})
	}
	return assessments, nil
}

func (repo courseRepository) QueryModuleLinks(ctx context.Context, pred course.AssessmentPredicate) ([]course.ModuleLink, error) {
	where, ok := assessmentMods(pred)
	if !ok {
		return []course.ModuleLink{}, nil
	}
	mods := []qm.QueryMod{
		qm.Select(
			"module_items.assessment_id AS assessment_id",
			"modules.id AS module_id",
			"modules.title AS module_title",
			"modules.order_index AS module_order_index",
		),
		qm.From("module_items"),
		qm.InnerJoin("modules ON modules.id = module_items.module_id"),
		qm.InnerJoin("assessments ON assessments.id = module_items.assessment_id"),
		qm.InnerJoin("classes ON classes.id = assessments.class_id"),
		qm.Where("modules.is_published = ?", true),
	}
	mods = append(mods, where...)
	mods = append(mods, qm.OrderBy("modules.order_index, module_items.order_index, modules.id"))

	var rows []moduleLinkRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying module links")
	}

	links := make([]course.ModuleLink, 0, len(rows))
	for _, r := range rows {
		links = append(links, course.ModuleLink{
			AssessmentID: r.AssessmentID,
			Module:       course.Module{ID: r.ModuleID, Title: r.ModuleTitle, OrderIndex: r.ModuleOrderIndex},
		})
	}
	return links, nil
}

func (repo courseRepository) QuerySubmissions(ctx context.Context, pred course.SubmissionPredicate) ([]course.Submission, error) {
	where, ok := assessmentMods(pred.Assessment)
	if !ok {
		return []course.Submission{}, nil
	}
	where, ok = whereIDsEq(where,
		idEq{"submissions.student_id", pred.StudentID},
		idEq{"submissions.assessment_id", pred.AssessmentID},
	)
	if !ok {
		return []course.Submission{}, nil
	}

	mods := []qm.QueryMod{
		qm.Select(
			"submissions.id AS id",
			"submissions.assessment_id AS assessment_id",
			"submissions.student_id AS student_id",
			"submissions.total_score AS total_score",
			"submissions.status AS status",
			"submissions.is_late AS is_late",
			"submissions.updated_at AS updated_at",
		),
		qm.From("submissions"),
		qm.InnerJoin("assessments ON assessments.id = submissions.assessment_id"),
		qm.InnerJoin("classes ON classes.id = assessments.class_id"),
	}
	mods = append(mods, where...)
	mods = append(mods, qm.OrderBy("submissions.id"))

	var rows []submissionRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	submissions := make([]course.Submission, 0, len(rows))
	for _, r := range rows {
		submissions = append(submissions, course.Submission{
			ID:           r.ID,
			AssessmentID: r.AssessmentID,
			StudentID:    r.StudentID,
			TotalScore:   r.TotalScore.Big,
			Status:       course.SubmissionStatus(r.Status),
			IsLate:       r.IsLate,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return submissions, nil
}
