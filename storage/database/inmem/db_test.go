package inmemdb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/course"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
	testutil "github.com/trezcool/gradebook/tests"
)

func TestDB_AddClass(t *testing.T) {
	db := inmemdb.NewDB()
	prof1 := testutil.CreateProfessor(t, db, "Ada Lovelace", "ada@school.edu")
	prof2 := testutil.CreateProfessor(t, db, "Alan Turing", "alan@school.edu")
	cs101 := testutil.CreateCourse(t, db, "CS101", "Intro to CS")

	// each professor can hold section 01 of the same course and term
	first := testutil.CreateClass(t, db, cs101, prof1, course.TermFall, 2025, "01")
	second := testutil.CreateClass(t, db, cs101, prof2, course.TermFall, 2025, "01")
	assert.NotEqual(t, first.ID, second.ID)

	tests := []struct {
		name    string
		class   course.ClassSection
		wantErr error
	}{
		{
			name:    "same professor, course, term, year and section",
			class:   course.ClassSection{CourseID: cs101.ID, ProfessorID: prof1.ID, Term: course.TermFall, Year: 2025, Section: "01"},
			wantErr: inmemdb.ErrDuplicate,
		},
		{
			name:    "existing id",
			class:   course.ClassSection{ID: first.ID, CourseID: cs101.ID, ProfessorID: prof1.ID, Term: course.TermSpring, Year: 2026, Section: "02"},
			wantErr: inmemdb.ErrDuplicate,
		},
		{
			name:    "unknown course",
			class:   course.ClassSection{CourseID: "nope", ProfessorID: prof1.ID, Term: course.TermFall, Year: 2025, Section: "01"},
			wantErr: inmemdb.ErrMissingRef,
		},
		{
			name:    "unknown professor",
			class:   course.ClassSection{CourseID: cs101.ID, ProfessorID: "nope", Term: course.TermFall, Year: 2025, Section: "01"},
			wantErr: inmemdb.ErrMissingRef,
		},
		{
			name:  "other section",
			class: course.ClassSection{CourseID: cs101.ID, ProfessorID: prof1.ID, Term: course.TermFall, Year: 2025, Section: "02"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, err := db.AddClass(tt.class)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "CS101", c.Course.Code)
		})
	}
}
