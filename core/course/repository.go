package course

import "context"

// Repository is the read-only view of the course data the filters and the gradebook are computed from.
type Repository interface {
	// QueryClasses returns the class sections matching `pred`, with their course and professor.
	QueryClasses(ctx context.Context, pred ClassPredicate) ([]ClassSection, error)
	// QueryEnrollments returns the enrollments matching `pred`, with their student.
	QueryEnrollments(ctx context.Context, pred EnrollmentPredicate) ([]Enrollment, error)
	// QueryAssessments returns the assessments matching `pred`, with their course code.
	QueryAssessments(ctx context.Context, pred AssessmentPredicate) ([]Assessment, error)
	// QueryModuleLinks returns the published module items linking to assessments matching `pred`,
	// ordered by module order index, then item order index.
	QueryModuleLinks(ctx context.Context, pred AssessmentPredicate) ([]ModuleLink, error)
	QuerySubmissions(ctx context.Context, pred SubmissionPredicate) ([]Submission, error)
}

// GetClass returns the class section identified by `id`.
func GetClass(ctx context.Context, repo Repository, id string) (ClassSection, error) {
	pred := BuildClassPredicate(Selection{ClassID: &id})
	if pred.ClassID == nil {
		return ClassSection{}, ErrNotFound
	}
	classes, err := repo.QueryClasses(ctx, pred)
	if err != nil {
		return ClassSection{}, err
	}
	if len(classes) == 0 {
		return ClassSection{}, ErrNotFound
	}
	return classes[0], nil
}
