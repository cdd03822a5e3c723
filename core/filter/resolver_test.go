package filter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/course"
	"github.com/trezcool/gradebook/core/filter"
	"github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/tests"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func termPtr(t course.Term) *course.Term { return &t }

type fixture struct {
	resolver *filter.Resolver

	p1, p2      filter.PersonOption
	c1, c2      course.Course
	x, y, z     course.ClassSection
	ann, bob    filter.PersonOption
	lab1, quiz1 course.Assessment
	exam1       course.Assessment
}

// setup creates:
// - X: CS101 Fall 2025 by P1, with Ann (active) and Bob (dropped), Lab 1 and Quiz 1
// - Y: CS101 Spring 2025 by P2, with Bob
// - Z: MA201 Fall 2024 by P1, with Exam 1
func setup(t *testing.T) fixture {
	db := inmemdb.NewDB()
	var f fixture

	prof1 := testutil.CreateProfessor(t, db, "Prof One", "p1@school.edu")
	prof2 := testutil.CreateProfessor(t, db, "Prof Two", "p2@school.edu")
	ann := testutil.CreateStudent(t, db, "Ann", "ann@school.edu")
	bob := testutil.CreateStudent(t, db, "", "bob@school.edu")
	f.p1 = filter.PersonOption{ID: prof1.ID, Name: "Prof One"}
	f.p2 = filter.PersonOption{ID: prof2.ID, Name: "Prof Two"}
	f.ann = filter.PersonOption{ID: ann.ID, Name: "Ann"}
	f.bob = filter.PersonOption{ID: bob.ID, Name: "bob@school.edu"}

	f.c1 = testutil.CreateCourse(t, db, "CS101", "Intro to CS")
	f.c2 = testutil.CreateCourse(t, db, "MA201", "Linear Algebra")

	f.x = testutil.CreateClass(t, db, f.c1, prof1, course.TermFall, 2025, "01")
	f.y = testutil.CreateClass(t, db, f.c1, prof2, course.TermSpring, 2025, "02")
	f.z = testutil.CreateClass(t, db, f.c2, prof1, course.TermFall, 2024, "01")

	testutil.Enroll(t, db, f.x, ann, course.EnrollmentActive)
	testutil.Enroll(t, db, f.x, bob, course.EnrollmentDropped)
	testutil.Enroll(t, db, f.y, bob, course.EnrollmentActive)

	now := time.Now().UTC()
	f.quiz1 = testutil.CreateAssessment(t, db, f.x, course.Assessment{
		Title: "Quiz 1", Type: course.AssessmentQuiz, OrderIndex: 2, CreatedAt: now,
	})
	f.lab1 = testutil.CreateAssessment(t, db, f.x, course.Assessment{
		Title: "Lab 1", Type: course.AssessmentLab, OrderIndex: 1, CreatedAt: now, IncludeInGradebook: true,
	})
	f.exam1 = testutil.CreateAssessment(t, db, f.z, course.Assessment{
		Title: "Exam 1", Type: course.AssessmentExam, OrderIndex: 1, CreatedAt: now.Add(time.Minute),
	})

	f.resolver = filter.NewResolver(inmemdb.NewCourseRepository(db))
	return f
}

func classOpt(c course.ClassSection, crs course.Course) filter.ClassOption {
	return filter.ClassOption{ID: c.ID, Code: crs.Code + "-" + c.Section, Title: crs.Title}
}

func courseOpt(c course.Course) filter.CourseOption {
	return filter.CourseOption{ID: c.ID, Code: c.Code, Title: c.Title}
}

func assessmentOpt(a course.Assessment, code string) filter.AssessmentOption {
	return filter.AssessmentOption{ID: a.ID, Title: a.Title, CourseCode: code}
}

func TestResolver_ResolveOptions(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		sel  course.Selection
		want filter.OptionSet
	}{
		{
			name: "empty selection",
			sel:  course.Selection{},
			want: filter.OptionSet{
				Terms:       []course.Term{course.TermFall, course.TermSpring},
				Years:       []int{2025, 2024},
				Professors:  []filter.PersonOption{f.p1, f.p2},
				Courses:     []filter.CourseOption{courseOpt(f.c1), courseOpt(f.c2)},
				Classes:     []filter.ClassOption{classOpt(f.x, f.c1), classOpt(f.y, f.c1), classOpt(f.z, f.c2)},
				Students:    []filter.PersonOption{f.ann, f.bob},
				Assessments: []filter.AssessmentOption{assessmentOpt(f.lab1, "CS101"), assessmentOpt(f.exam1, "MA201"), assessmentOpt(f.quiz1, "CS101")},
			},
		},
		{
			name: "course narrows every dimension",
			sel:  course.Selection{CourseID: strPtr(f.c1.ID)},
			want: filter.OptionSet{
				Terms:       []course.Term{course.TermFall, course.TermSpring},
				Years:       []int{2025},
				Professors:  []filter.PersonOption{f.p1, f.p2},
				Courses:     []filter.CourseOption{courseOpt(f.c1)},
				Classes:     []filter.ClassOption{classOpt(f.x, f.c1), classOpt(f.y, f.c1)},
				Students:    []filter.PersonOption{f.ann, f.bob},
				Assessments: []filter.AssessmentOption{assessmentOpt(f.lab1, "CS101"), assessmentOpt(f.quiz1, "CS101")},
			},
		},
		{
			name: "term and professor",
			sel:  course.Selection{Term: termPtr(course.TermFall), ProfessorID: strPtr(f.p1.ID), Year: intPtr(2024)},
			want: filter.OptionSet{
				Terms:       []course.Term{course.TermFall},
				Years:       []int{2024},
				Professors:  []filter.PersonOption{f.p1},
				Courses:     []filter.CourseOption{courseOpt(f.c2)},
				Classes:     []filter.ClassOption{classOpt(f.z, f.c2)},
				Students:    []filter.PersonOption{},
				Assessments: []filter.AssessmentOption{assessmentOpt(f.exam1, "MA201")},
			},
		},
		{
			name: "student and assessment never narrow their own lists",
			sel:  course.Selection{ClassID: strPtr(f.x.ID), StudentID: strPtr(f.ann.ID), AssessmentID: strPtr(f.lab1.ID)},
			want: filter.OptionSet{
				Terms:       []course.Term{course.TermFall},
				Years:       []int{2025},
				Professors:  []filter.PersonOption{f.p1},
				Courses:     []filter.CourseOption{courseOpt(f.c1)},
				Classes:     []filter.ClassOption{classOpt(f.x, f.c1)},
				Students:    []filter.PersonOption{f.ann, f.bob},
				Assessments: []filter.AssessmentOption{assessmentOpt(f.lab1, "CS101"), assessmentOpt(f.quiz1, "CS101")},
			},
		},
		{
			name: "impossible combination",
			sel:  course.Selection{Term: termPtr(course.TermSpring), ProfessorID: strPtr(f.p1.ID)},
			want: filter.OptionSet{
				Terms:       []course.Term{},
				Years:       []int{},
				Professors:  []filter.PersonOption{},
				Courses:     []filter.CourseOption{},
				Classes:     []filter.ClassOption{},
				Students:    []filter.PersonOption{},
				Assessments: []filter.AssessmentOption{},
			},
		},
		{
			name: "unknown class",
			sel:  course.Selection{ClassID: strPtr("nope")},
			want: filter.OptionSet{
				Terms:       []course.Term{},
				Years:       []int{},
				Professors:  []filter.PersonOption{},
				Courses:     []filter.CourseOption{},
				Classes:     []filter.ClassOption{},
				Students:    []filter.PersonOption{},
				Assessments: []filter.AssessmentOption{},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.resolver.ResolveOptions(context.Background(), tc.sel)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolver_ResolveOptions_monotonic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	selections := []course.Selection{
		{},
		{Year: intPtr(2025)},
		{Year: intPtr(2025), CourseID: strPtr(f.c1.ID)},
		{Year: intPtr(2025), CourseID: strPtr(f.c1.ID), Term: termPtr(course.TermFall)},
		{Year: intPtr(2025), CourseID: strPtr(f.c1.ID), Term: termPtr(course.TermFall), ProfessorID: strPtr(f.p2.ID)},
	}

	prev, err := f.resolver.ResolveOptions(ctx, selections[0])
	require.NoError(t, err)
	for _, sel := range selections[1:] {
		got, err := f.resolver.ResolveOptions(ctx, sel)
		require.NoError(t, err)

		assert.Subset(t, prev.Terms, got.Terms)
		assert.Subset(t, prev.Years, got.Years)
		assert.Subset(t, prev.Professors, got.Professors)
		assert.Subset(t, prev.Courses, got.Courses)
		assert.Subset(t, prev.Classes, got.Classes)
		assert.Subset(t, prev.Students, got.Students)
		assert.Subset(t, prev.Assessments, got.Assessments)
		prev = got
	}
}

var errBoom = errors.New("boom")

// failingRepo fails the query named by `failOn`.
type failingRepo struct {
	course.Repository
	failOn string
}

func (r failingRepo) QueryClasses(ctx context.Context, pred course.ClassPredicate) ([]course.ClassSection, error) {
	if r.failOn == "classes" {
		return nil, errBoom
	}
	return r.Repository.QueryClasses(ctx, pred)
}

func (r failingRepo) QueryEnrollments(ctx context.Context, pred course.EnrollmentPredicate) ([]course.Enrollment, error) {
	if r.failOn == "enrollments" {
		return nil, errBoom
	}
	return r.Repository.QueryEnrollments(ctx, pred)
}

func (r failingRepo) QueryAssessments(ctx context.Context, pred course.AssessmentPredicate) ([]course.Assessment, error) {
	if r.failOn == "assessments" {
		return nil, errBoom
	}
	return r.Repository.QueryAssessments(ctx, pred)
}

func TestResolver_ResolveOptions_repositoryFailure(t *testing.T) {
	db := inmemdb.NewDB()
	prof := testutil.CreateProfessor(t, db, "Prof", "prof@school.edu")
	crs := testutil.CreateCourse(t, db, "CS101", "Intro")
	testutil.CreateClass(t, db, crs, prof, course.TermFall, 2025, "01")
	repo := inmemdb.NewCourseRepository(db)

	for _, failOn := range []string{"classes", "enrollments", "assessments"} {
		t.Run(failOn, func(t *testing.T) {
			resolver := filter.NewResolver(failingRepo{Repository: repo, failOn: failOn})
			_, err := resolver.ResolveOptions(context.Background(), course.Selection{})
			require.Error(t, err)
			assert.Equal(t, errBoom, pkgerrors.Cause(err))
		})
	}
}
