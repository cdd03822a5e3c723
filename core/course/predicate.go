package course

import "strings"

// Selection is a sparse filter selection. A nil field imposes no constraint.
type Selection struct {
	Term         *Term   `json:"term,omitempty"`
	Year         *int    `json:"year,omitempty"`
	ProfessorID  *string `json:"professorId,omitempty"`
	CourseID     *string `json:"courseId,omitempty"`
	ClassID      *string `json:"classId,omitempty"`
	StudentID    *string `json:"studentId,omitempty"`
	AssessmentID *string `json:"assessmentId,omitempty"`
}

// ClassPredicate is a conjunction of equality tests on class sections.
type ClassPredicate struct {
	Term        *Term
	Year        *int
	ProfessorID *string
	CourseID    *string
	ClassID     *string
}

// BuildClassPredicate maps the class level fields of `sel` to equality constraints.
// Absent or invalid values (unknown term, non-positive year, blank ids) are ignored.
func BuildClassPredicate(sel Selection) ClassPredicate {
	var p ClassPredicate
	if sel.Term != nil && sel.Term.IsValid() {
		term := *sel.Term
		p.Term = &term
	}
	if sel.Year != nil && *sel.Year > 0 {
		year := *sel.Year
		p.Year = &year
	}
	p.ProfessorID = cleanID(sel.ProfessorID)
	p.CourseID = cleanID(sel.CourseID)
	p.ClassID = cleanID(sel.ClassID)
	return p
}

func (p ClassPredicate) IsEmpty() bool {
	return p.Term == nil && p.Year == nil && p.ProfessorID == nil && p.CourseID == nil && p.ClassID == nil
}

func (p ClassPredicate) Matches(c ClassSection) bool {
	return (p.Term == nil || *p.Term == c.Term) &&
		(p.Year == nil || *p.Year == c.Year) &&
		(p.ProfessorID == nil || *p.ProfessorID == c.ProfessorID) &&
		(p.CourseID == nil || *p.CourseID == c.CourseID) &&
		(p.ClassID == nil || *p.ClassID == c.ID)
}

// classScope restricts rows related to a class section, either through the
// class predicate or through an explicit set of class ids.
type classScope struct {
	Class    *ClassPredicate // nil: any class
	ClassIDs []string        // nil: any class; empty: no class
}

func newClassScope(sel Selection) classScope {
	cp := BuildClassPredicate(sel)
	if cp.IsEmpty() {
		return classScope{}
	}
	return classScope{Class: &cp}
}

func (s classScope) isEmpty() bool {
	return s.Class == nil && s.ClassIDs == nil
}

func (s classScope) matches(c ClassSection) bool {
	if s.Class != nil && !s.Class.Matches(c) {
		return false
	}
	if s.ClassIDs != nil && !containsString(s.ClassIDs, c.ID) {
		return false
	}
	return true
}

type AssessmentPredicate struct {
	classScope
	GradableOnly bool
}

// BuildAssessmentPredicate nests the class predicate of `sel` through the assessment's class.
// It collapses to an unconstrained predicate when the class predicate is empty.
func BuildAssessmentPredicate(sel Selection) AssessmentPredicate {
	return AssessmentPredicate{classScope: newClassScope(sel)}
}

func (p AssessmentPredicate) IsEmpty() bool {
	return p.isEmpty() && !p.GradableOnly
}

// ForClasses narrows the predicate to assessments of the given classes.
func (p AssessmentPredicate) ForClasses(ids []string) AssessmentPredicate {
	p.ClassIDs = append(make([]string, 0, len(ids)), ids...)
	return p
}

// Gradable narrows the predicate to assessments included in the gradebook.
func (p AssessmentPredicate) Gradable() AssessmentPredicate {
	p.GradableOnly = true
	return p
}

// Matches reports whether `a`, held by `class`, satisfies the predicate.
func (p AssessmentPredicate) Matches(a Assessment, class ClassSection) bool {
	if p.GradableOnly && !a.IncludeInGradebook {
		return false
	}
	return a.ClassID == class.ID && p.matches(class)
}

type EnrollmentPredicate struct {
	classScope
	ActiveOnly bool
}

// BuildEnrollmentPredicate nests the class predicate of `sel` through the enrollment's class,
// with the same collapse rule as BuildAssessmentPredicate.
func BuildEnrollmentPredicate(sel Selection) EnrollmentPredicate {
	return EnrollmentPredicate{classScope: newClassScope(sel)}
}

func (p EnrollmentPredicate) IsEmpty() bool {
	return p.isEmpty() && !p.ActiveOnly
}

// ForClasses narrows the predicate to enrollments in the given classes.
func (p EnrollmentPredicate) ForClasses(ids []string) EnrollmentPredicate {
	p.ClassIDs = append(make([]string, 0, len(ids)), ids...)
	return p
}

// Active narrows the predicate to active enrollments.
func (p EnrollmentPredicate) Active() EnrollmentPredicate {
	p.ActiveOnly = true
	return p
}

func (p EnrollmentPredicate) Matches(e Enrollment, class ClassSection) bool {
	if p.ActiveOnly && !e.IsActive() {
		return false
	}
	return e.ClassID == class.ID && p.matches(class)
}

// SubmissionPredicate combines the nested assessment predicate with direct
// equality tests on the submission's student and assessment.
type SubmissionPredicate struct {
	Assessment   AssessmentPredicate
	StudentID    *string
	AssessmentID *string
}

// BuildSubmissionPredicate routes the class level fields of `sel` through the
// submission's assessment; the student and assessment fields apply directly.
func BuildSubmissionPredicate(sel Selection) SubmissionPredicate {
	return SubmissionPredicate{
		Assessment:   BuildAssessmentPredicate(sel),
		StudentID:    cleanID(sel.StudentID),
		AssessmentID: cleanID(sel.AssessmentID),
	}
}

func (p SubmissionPredicate) IsEmpty() bool {
	return p.Assessment.IsEmpty() && p.StudentID == nil && p.AssessmentID == nil
}

// Matches reports whether `s` satisfies the predicate; `a` is the submission's
// assessment and `class` the assessment's class.
func (p SubmissionPredicate) Matches(s Submission, a Assessment, class ClassSection) bool {
	if p.StudentID != nil && *p.StudentID != s.StudentID {
		return false
	}
	if p.AssessmentID != nil && *p.AssessmentID != s.AssessmentID {
		return false
	}
	return s.AssessmentID == a.ID && p.Assessment.Matches(a, class)
}

func cleanID(id *string) *string {
	if id == nil {
		return nil
	}
	s := strings.TrimSpace(*id)
	if s == "" {
		return nil
	}
	return &s
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
