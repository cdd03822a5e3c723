package inmemdb

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/gradebook/core/course"
	"github.com/trezcool/gradebook/core/user"
)

var (
	ErrDuplicate  = errors.New("duplicate record")
	ErrMissingRef = errors.New("referenced record does not exist")
)

type (
	// Module is a stored course module. Only published modules are visible to the gradebook.
	Module struct {
		ID          string
		ClassID     string
		Title       string
		IsPublished bool
		OrderIndex  int
	}

	// ModuleItem places an assessment in a module.
	ModuleItem struct {
		ID           string
		ModuleID     string
		AssessmentID string
		OrderIndex   int
	}
)

// DB is a mutex guarded in-memory store holding the same tables as the postgres schema.
type DB struct {
	mutex sync.RWMutex

	users       map[string]user.User
	courses     map[string]course.Course
	classes     map[string]course.ClassSection
	enrollments map[string]course.Enrollment
	assessments map[string]course.Assessment
	modules     map[string]Module
	moduleItems map[string]ModuleItem
	submissions map[string]course.Submission
}

func NewDB() *DB {
	return &DB{
		users:       make(map[string]user.User),
		courses:     make(map[string]course.Course),
		classes:     make(map[string]course.ClassSection),
		enrollments: make(map[string]course.Enrollment),
		assessments: make(map[string]course.Assessment),
		modules:     make(map[string]Module),
		moduleItems: make(map[string]ModuleItem),
		submissions: make(map[string]course.Submission),
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func (db *DB) AddCourse(c course.Course) (course.Course, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	c.ID = newID(c.ID)
	if _, ok := db.courses[c.ID]; ok {
		return course.Course{}, ErrDuplicate
	}
	for _, other := range db.courses {
		if other.Code == c.Code {
			return course.Course{}, ErrDuplicate
		}
	}
	db.courses[c.ID] = c
	return c, nil
}

// AddClass stores `c`; its course and professor must exist.
func (db *DB) AddClass(c course.ClassSection) (course.ClassSection, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[c.CourseID]; !ok {
		return course.ClassSection{}, ErrMissingRef
	}
	if _, ok := db.users[c.ProfessorID]; !ok {
		return course.ClassSection{}, ErrMissingRef
	}
	c.ID = newID(c.ID)
	if _, ok := db.classes[c.ID]; ok {
		return course.ClassSection{}, ErrDuplicate
	}
	for _, other := range db.classes {
		if other.CourseID == c.CourseID && other.ProfessorID == c.ProfessorID &&
			other.Term == c.Term && other.Year == c.Year && other.Section == c.Section {
			return course.ClassSection{}, ErrDuplicate
		}
	}
	c.Course, c.Professor = course.Course{}, course.Person{}
	db.classes[c.ID] = c
	return db.hydrateClass(c), nil
}

func (db *DB) AddEnrollment(e course.Enrollment) (course.Enrollment, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.classes[e.ClassID]; !ok {
		return course.Enrollment{}, ErrMissingRef
	}
	if _, ok := db.users[e.StudentID]; !ok {
		return course.Enrollment{}, ErrMissingRef
	}
	e.ID = newID(e.ID)
	if _, ok := db.enrollments[e.ID]; ok {
		return course.Enrollment{}, ErrDuplicate
	}
	for _, other := range db.enrollments {
		if other.ClassID == e.ClassID && other.StudentID == e.StudentID {
			return course.Enrollment{}, ErrDuplicate
		}
	}
	if e.Status == "" {
		e.Status = course.EnrollmentActive
	}
	e.Student = course.Person{}
	db.enrollments[e.ID] = e
	return db.hydrateEnrollment(e), nil
}

func (db *DB) AddAssessment(a course.Assessment) (course.Assessment, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.classes[a.ClassID]; !ok {
		return course.Assessment{}, ErrMissingRef
	}
	if a.MaxPoints != nil && a.MaxPoints.Sign() < 0 {
		return course.Assessment{}, errors.New("max points must not be negative")
	}
	a.ID = newID(a.ID)
	if _, ok := db.assessments[a.ID]; ok {
		return course.Assessment{}, ErrDuplicate
	}
	a.CourseCode = ""
	db.assessments[a.ID] = a
	return db.hydrateAssessment(a), nil
}

func (db *DB) AddModule(m Module) (Module, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.classes[m.ClassID]; !ok {
		return Module{}, ErrMissingRef
	}
	m.ID = newID(m.ID)
	if _, ok := db.modules[m.ID]; ok {
		return Module{}, ErrDuplicate
	}
	db.modules[m.ID] = m
	return m, nil
}

func (db *DB) AddModuleItem(item ModuleItem) (ModuleItem, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.modules[item.ModuleID]; !ok {
		return ModuleItem{}, ErrMissingRef
	}
	if item.AssessmentID != "" {
		if _, ok := db.assessments[item.AssessmentID]; !ok {
			return ModuleItem{}, ErrMissingRef
		}
	}
	item.ID = newID(item.ID)
	if _, ok := db.moduleItems[item.ID]; ok {
		return ModuleItem{}, ErrDuplicate
	}
	db.moduleItems[item.ID] = item
	return item, nil
}

// AddSubmission stores `s`. There is at most one submission per (assessment, student).
func (db *DB) AddSubmission(s course.Submission) (course.Submission, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.assessments[s.AssessmentID]; !ok {
		return course.Submission{}, ErrMissingRef
	}
	if _, ok := db.users[s.StudentID]; !ok {
		return course.Submission{}, ErrMissingRef
	}
	s.ID = newID(s.ID)
	if _, ok := db.submissions[s.ID]; ok {
		return course.Submission{}, ErrDuplicate
	}
	for _, other := range db.submissions {
		if other.AssessmentID == s.AssessmentID && other.StudentID == s.StudentID {
			return course.Submission{}, ErrDuplicate
		}
	}
	db.submissions[s.ID] = s
	return s, nil
}

// hydrate* fill in the denormalized fields. They must be called with the mutex held.

func (db *DB) hydrateClass(c course.ClassSection) course.ClassSection {
	c.Course = db.courses[c.CourseID]
	if prof, ok := db.users[c.ProfessorID]; ok {
		c.Professor = prof.Person()
	}
	return c
}

func (db *DB) hydrateEnrollment(e course.Enrollment) course.Enrollment {
	if student, ok := db.users[e.StudentID]; ok {
		e.Student = student.Person()
	}
	return e
}

func (db *DB) hydrateAssessment(a course.Assessment) course.Assessment {
	if class, ok := db.classes[a.ClassID]; ok {
		a.CourseCode = db.courses[class.CourseID].Code
	}
	return a
}
