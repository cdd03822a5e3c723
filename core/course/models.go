package course

import (
	"errors"
	"strings"
	"time"

	"github.com/ericlagergren/decimal"
)

var ErrNotFound = errors.New("class not found")

type Term string

const (
	TermFall   Term = "Fall"
	TermSpring Term = "Spring"
	TermSummer Term = "Summer"
	TermWinter Term = "Winter"
)

var Terms = []Term{TermFall, TermSpring, TermSummer, TermWinter}

func (t Term) IsValid() bool {
	for _, term := range Terms {
		if t == term {
			return true
		}
	}
	return false
}

// ParseTerm matches `s` against the known terms, case-insensitively.
func ParseTerm(s string) (Term, bool) {
	s = strings.TrimSpace(s)
	for _, term := range Terms {
		if strings.EqualFold(s, string(term)) {
			return term, true
		}
	}
	return "", false
}

type EnrollmentStatus string

const (
	EnrollmentActive  EnrollmentStatus = "active"
	EnrollmentDropped EnrollmentStatus = "dropped"
	EnrollmentOther   EnrollmentStatus = "other"
)

// AssessmentType is the gradebook category of an Assessment.
type AssessmentType string

const (
	AssessmentLab        AssessmentType = "LAB"
	AssessmentQuiz       AssessmentType = "QUIZ"
	AssessmentExam       AssessmentType = "EXAM"
	AssessmentAssignment AssessmentType = "ASSIGNMENT"
	AssessmentProject    AssessmentType = "PROJECT"
)

type SubmissionStatus string

const (
	StatusNotSubmitted SubmissionStatus = "NOT_SUBMITTED"
	StatusSubmitted    SubmissionStatus = "SUBMITTED"
	StatusGraded       SubmissionStatus = "GRADED"
	StatusLate         SubmissionStatus = "LATE"
)

// Person is the denormalized view of a user (professor or student).
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName falls back to the email when the person has no full name.
func (p Person) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.Email
}

type Course struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ClassSection is one offering of a Course, taught by a professor during a term.
type ClassSection struct {
	ID          string
	CourseID    string
	ProfessorID string
	Term        Term
	Year        int
	Section     string

	// denormalized
	Course    Course
	Professor Person
}

// Code identifies the section among the offerings of its course, eg: CS101-02.
func (c ClassSection) Code() string {
	if c.Section == "" {
		return c.Course.Code
	}
	return c.Course.Code + "-" + c.Section
}

type Enrollment struct {
	ID        string
	ClassID   string
	StudentID string
	Status    EnrollmentStatus
	Student   Person
}

func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}

type Assessment struct {
	ID                 string
	ClassID            string
	Title              string
	Type               AssessmentType
	MaxPoints          *decimal.Big
	IncludeInGradebook bool
	DueAt              *time.Time
	OrderIndex         int
	CreatedAt          time.Time

	// denormalized
	CourseCode string
}

type Module struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	OrderIndex int    `json:"orderIndex"`
}

// ModuleLink ties an Assessment to a published Module it appears in.
type ModuleLink struct {
	AssessmentID string
	Module       Module
}

type Submission struct {
	ID           string
	AssessmentID string
	StudentID    string
	TotalScore   *decimal.Big // nil: not graded
	Status       SubmissionStatus
	IsLate       bool
	UpdatedAt    time.Time
}
