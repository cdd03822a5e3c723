package filter

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/gradebook/core/course"
)

type (
	PersonOption struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	CourseOption struct {
		ID    string `json:"id"`
		Code  string `json:"code"`
		Title string `json:"title"`
	}

	ClassOption struct {
		ID    string `json:"id"`
		Code  string `json:"code"`
		Title string `json:"title"`
	}

	AssessmentOption struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		CourseCode string `json:"courseCode"`
	}

	// OptionSet holds the legal values of every filter dimension for a Selection.
	OptionSet struct {
		Terms       []course.Term      `json:"terms"`
		Years       []int              `json:"years"`
		Professors  []PersonOption     `json:"professors"`
		Courses     []CourseOption     `json:"courses"`
		Classes     []ClassOption      `json:"classes"`
		Students    []PersonOption     `json:"students"`
		Assessments []AssessmentOption `json:"assessments"`
	}
)

func emptyOptionSet() OptionSet {
	return OptionSet{
		Terms:       []course.Term{},
		Years:       []int{},
		Professors:  []PersonOption{},
		Courses:     []CourseOption{},
		Classes:     []ClassOption{},
		Students:    []PersonOption{},
		Assessments: []AssessmentOption{},
	}
}

// Resolver computes the cascading filter options.
type Resolver struct {
	repo course.Repository
}

func NewResolver(repo course.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveOptions narrows every filter dimension to the values still reachable from `sel`.
//
// Terms, years, professors, courses and classes come from the classes matching the class level
// fields of `sel`. Students and assessments come from those classes only: the student and
// assessment fields never narrow their own option lists.
// An impossible combination yields empty lists, never an error.
func (r *Resolver) ResolveOptions(ctx context.Context, sel course.Selection) (OptionSet, error) {
	opts := emptyOptionSet()

	classes, err := r.repo.QueryClasses(ctx, course.BuildClassPredicate(sel))
	if err != nil {
		return opts, errors.Wrap(err, "querying classes")
	}
	if len(classes) == 0 {
		return opts, nil
	}

	opts.Terms = termOptions(classes)
	opts.Years = yearOptions(classes)
	opts.Professors = professorOptions(classes)
	opts.Courses = courseOptions(classes)
	opts.Classes = classOptions(classes)

	ids := make([]string, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}

	var (
		enrollments []course.Enrollment
		assessments []course.Assessment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enrollments, err = r.repo.QueryEnrollments(gctx, course.EnrollmentPredicate{}.ForClasses(ids))
		return errors.Wrap(err, "querying enrollments")
	})
	g.Go(func() error {
		var err error
		assessments, err = r.repo.QueryAssessments(gctx, course.AssessmentPredicate{}.ForClasses(ids))
		return errors.Wrap(err, "querying assessments")
	})
	if err = g.Wait(); err != nil {
		return emptyOptionSet(), err
	}

	opts.Students = studentOptions(enrollments)
	opts.Assessments = assessmentOptions(assessments)
	return opts, nil
}

func termOptions(classes []course.ClassSection) []course.Term {
	seen := make(map[course.Term]bool)
	terms := make([]course.Term, 0, len(course.Terms))
	for _, c := range classes {
		if !seen[c.Term] {
			seen[c.Term] = true
			terms = append(terms, c.Term)
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })
	return terms
}

func yearOptions(classes []course.ClassSection) []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, c := range classes {
		if !seen[c.Year] {
			seen[c.Year] = true
			years = append(years, c.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func professorOptions(classes []course.ClassSection) []PersonOption {
	people := make([]course.Person, 0, len(classes))
	for _, c := range classes {
		people = append(people, c.Professor)
	}
	return personOptions(people)
}

func studentOptions(enrollments []course.Enrollment) []PersonOption {
	people := make([]course.Person, 0, len(enrollments))
	for _, e := range enrollments {
		people = append(people, e.Student)
	}
	return personOptions(people)
}

// personOptions dedupes `people` by id and sorts them by display name.
func personOptions(people []course.Person) []PersonOption {
	seen := make(map[string]bool, len(people))
	opts := make([]PersonOption, 0, len(people))
	for _, p := range people {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		opts = append(opts, PersonOption{ID: p.ID, Name: p.DisplayName()})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Name != opts[j].Name {
			return opts[i].Name < opts[j].Name
		}
		return opts[i].ID < opts[j].ID
	})
	return opts
}

func courseOptions(classes []course.ClassSection) []CourseOption {
	seen := make(map[string]bool)
	opts := make([]CourseOption, 0)
	for _, c := range classes {
		if seen[c.CourseID] {
			continue
		}
		seen[c.CourseID] = true
		opts = append(opts, CourseOption{ID: c.CourseID, Code: c.Course.Code, Title: c.Course.Title})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Code != opts[j].Code {
			return opts[i].Code < opts[j].Code
		}
		return opts[i].ID < opts[j].ID
	})
	return opts
}

func classOptions(classes []course.ClassSection) []ClassOption {
	opts := make([]ClassOption, 0, len(classes))
	for _, c := range classes {
		opts = append(opts, ClassOption{ID: c.ID, Code: c.Code(), Title: c.Course.Title})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Code != opts[j].Code {
			return opts[i].Code < opts[j].Code
		}
		return opts[i].ID < opts[j].ID
	})
	return opts
}

// assessmentOptions keeps the persisted ordering: order index, then creation time.
func assessmentOptions(assessments []course.Assessment) []AssessmentOption {
	sorted := make([]course.Assessment, len(assessments))
	copy(sorted, assessments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	seen := make(map[string]bool, len(sorted))
	opts := make([]AssessmentOption, 0, len(sorted))
	for _, a := range sorted {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		opts = append(opts, AssessmentOption{ID: a.ID, Title: a.Title, CourseCode: a.CourseCode})
	}
	return opts
}
