package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/course"
	"github.com/trezcool/gradebook/core/filter"
)

type filterApi struct {
	resolver *filter.Resolver
}

func registerFilterAPI(g *echo.Group, jwt echo.MiddlewareFunc, resolver *filter.Resolver) {
	api := filterApi{resolver: resolver}

	fg := g.Group("/filters", jwt, staffMiddleware())
	fg.GET("/options", api.options)
}

func (api *filterApi) options(ctx echo.Context) error {
	var data FilterOptionsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FilterOptionsRequest")
	}
	sel := data.Selection()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// professors only browse their own classes
	if !claims.IsAdmin {
		professorID := claims.Subject
		sel.ProfessorID = &professorID
	}

	opts, err := api.resolver.ResolveOptions(ctx.Request().Context(), sel)
	if err != nil {
		return errors.Wrap(err, "resolving filter options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

// FilterOptionsRequest is the raw filter selection of the portals.
// "" and "all" mean no constraint; an unknown term or a non-numeric year is ignored.
type FilterOptionsRequest struct {
	Term         string `query:"term"`
	Year         string `query:"year"`
	ProfessorID  string `query:"professor_id"`
	CourseID     string `query:"course_id"`
	ClassID      string `query:"class_id"`
	StudentID    string `query:"student_id"`
	AssessmentID string `query:"assessment_id"`
}

func (fr FilterOptionsRequest) Selection() course.Selection {
	var sel course.Selection

	if term := selectedValue(fr.Term); term != nil {
		if t, ok := course.ParseTerm(*term); ok {
			sel.Term = &t
		}
	}
	if year := selectedValue(fr.Year); year != nil {
		if y, err := strconv.Atoi(*year); err == nil && y > 0 {
			sel.Year = &y
		}
	}
	sel.ProfessorID = selectedValue(fr.ProfessorID)
	sel.CourseID = selectedValue(fr.CourseID)
	sel.ClassID = selectedValue(fr.ClassID)
	sel.StudentID = selectedValue(fr.StudentID)
	sel.AssessmentID = selectedValue(fr.AssessmentID)
	return sel
}

func selectedValue(s string) *string {
	if strings.EqualFold(core.CleanString(s), "all") {
		return nil
	}
	return core.StringPtr(s)
}
