package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/course"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/storage/database/inmem"
)

// Dec parses a decimal literal, failing the test on error.
func Dec(t *testing.T, s string) *decimal.Big {
	d, ok := new(decimal.Big).SetString(s)
	require.True(t, ok, "invalid decimal %q", s)
	return d
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		require.NoError(t, usr.SetPassword(pwd), "createUser() failed")
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err, "createUser() failed")
	return usr
}

func CreateProfessor(t *testing.T, db *inmemdb.DB, name, email string) user.User {
	return CreateUser(t, inmemdb.NewUserRepository(db), name, email, email, "", []string{user.RoleProfessor}, true)
}

func CreateStudent(t *testing.T, db *inmemdb.DB, name, email string) user.User {
	return CreateUser(t, inmemdb.NewUserRepository(db), name, email, email, "", []string{user.RoleStudent}, true)
}

func CreateCourse(t *testing.T, db *inmemdb.DB, code, title string) course.Course {
	c, err := db.AddCourse(course.Course{Code: code, Title: title})
	require.NoError(t, err, "createCourse() failed")
	return c
}

func CreateClass(
	t *testing.T,
	db *inmemdb.DB,
	crs course.Course,
	professor user.User,
	term course.Term,
	year int,
	section string,
) course.ClassSection {
	c, err := db.AddClass(course.ClassSection{
		CourseID:    crs.ID,
		ProfessorID: professor.ID,
		Term:        term,
		Year:        year,
		Section:     section,
	})
	require.NoError(t, err, "createClass() failed")
	return c
}

func Enroll(
	t *testing.T,
	db *inmemdb.DB,
	class course.ClassSection,
	student user.User,
	status course.EnrollmentStatus,
) course.Enrollment {
	e, err := db.AddEnrollment(course.Enrollment{ClassID: class.ID, StudentID: student.ID, Status: status})
	require.NoError(t, err, "enroll() failed")
	return e
}

// CreateAssessment stores `a` in `class`. Gradable assessments only need a title, type and max points.
func CreateAssessment(t *testing.T, db *inmemdb.DB, class course.ClassSection, a course.Assessment) course.Assessment {
	a.ClassID = class.ID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a, err := db.AddAssessment(a)
	require.NoError(t, err, "createAssessment() failed")
	return a
}

func CreateModule(t *testing.T, db *inmemdb.DB, class course.ClassSection, title string, order int, published bool) inmemdb.Module {
	m, err := db.AddModule(inmemdb.Module{ClassID: class.ID, Title: title, OrderIndex: order, IsPublished: published})
	require.NoError(t, err, "createModule() failed")
	return m
}

func AddToModule(t *testing.T, db *inmemdb.DB, m inmemdb.Module, a course.Assessment, order int) {
	_, err := db.AddModuleItem(inmemdb.ModuleItem{ModuleID: m.ID, AssessmentID: a.ID, OrderIndex: order})
	require.NoError(t, err, "addToModule() failed")
}

// Submit stores a submission of `student` for `a`. A nil score means ungraded.
func Submit(
	t *testing.T,
	db *inmemdb.DB,
	a course.Assessment,
	student user.User,
	score *decimal.Big,
	status course.SubmissionStatus,
) course.Submission {
	s, err := db.AddSubmission(course.Submission{
		AssessmentID: a.ID,
		StudentID:    student.ID,
		TotalScore:   score,
		Status:       status,
		IsLate:       status == course.StatusLate,
		UpdatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err, "submit() failed")
	return s
}
