package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryClasses(_ context.Context, pred course.ClassPredicate) ([]course.ClassSection, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]course.ClassSection, 0)
	for _, c := range repo.db.classes {
		c = repo.db.hydrateClass(c)
		if pred.Matches(c) {
			classes = append(classes, c)
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		if a.Course.Code != b.Course.Code {
			return a.Course.Code < b.Course.Code
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.ID < b.ID
	})
	return classes, nil
}

func (repo *courseRepository) QueryEnrollments(_ context.Context, pred course.EnrollmentPredicate) ([]course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, e := range repo.db.enrollments {
		class := repo.db.hydrateClass(repo.db.classes[e.ClassID])
		if pred.Matches(e, class) {
			enrollments = append(enrollments, repo.db.hydrateEnrollment(e))
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

func (repo *courseRepository) QueryAssessments(_ context.Context, pred course.AssessmentPredicate) ([]course.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assessments := make([]course.Assessment, 0)
	for _, a := range repo.db.assessments {
		class := repo.db.hydrateClass(repo.db.classes[a.ClassID])
		if pred.Matches(a, class) {
			assessments = append(assessments, repo.db.hydrateAssessment(a))
		}
	}
	sortAssessments(assessments)
	return assessments, nil
}

func (repo *courseRepository) QueryModuleLinks(_ context.Context, pred course.AssessmentPredicate) ([]course.ModuleLink, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	type link struct {
		item   ModuleItem
		module Module
	}
	links := make([]link, 0)
	for _, item := range repo.db.moduleItems {
		m, ok := repo.db.modules[item.ModuleID]
		if !ok || !m.IsPublished || item.AssessmentID == "" {
			continue
		}
		a, ok := repo.db.assessments[item.AssessmentID]
		if !ok {
			continue
		}
		class := repo.db.hydrateClass(repo.db.classes[a.ClassID])
		if pred.Matches(a, class) {
			links = append(links, link{item: item, module: m})
		}
	}
	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.module.OrderIndex != b.module.OrderIndex {
			return a.module.OrderIndex < b.module.OrderIndex
		}
		if a.item.OrderIndex != b.item.OrderIndex {
			return a.item.OrderIndex < b.item.OrderIndex
		}
		if a.module.ID != b.module.ID {
			return a.module.ID < b.module.ID
		}
		return a.item.ID < b.item.ID
	})

	res := make([]course.ModuleLink, 0, len(links))
	for _, l := range links {
		res = append(res, course.ModuleLink{
			AssessmentID: l.item.AssessmentID,
			Module:       course.Module{ID: l.module.ID, Title: l.module.Title, OrderIndex: l.module.OrderIndex},
		})
	}
	return res, nil
}

func (repo *courseRepository) QuerySubmissions(_ context.Context, pred course.SubmissionPredicate) ([]course.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	submissions := make([]course.Submission, 0)
	for _, s := range repo.db.submissions {
		a, ok := repo.db.assessments[s.AssessmentID]
		if !ok {
			continue
		}
		class := repo.db.hydrateClass(repo.db.classes[a.ClassID])
		if pred.Matches(s, a, class) {
			submissions = append(submissions, s)
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}

func sortAssessments(assessments []course.Assessment) {
	sort.Slice(assessments, func(i, j int) bool {
		a, b := assessments[i], assessments[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
