package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/course"
)

var contextClassKey = "class"

// staffMiddleware only lets admins and professors through.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsStaff() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// classAccessMiddleware loads the class identified by the `id` path param.
// Admins access any class, professors only the classes they teach.
func classAccessMiddleware(courses course.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			class, err := course.GetClass(ctx.Request().Context(), courses, ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == course.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding class by ID")
			}

			if claims.IsAdmin || (claims.IsProfessor && class.ProfessorID == claims.Subject) {
				ctx.Set(contextClassKey, class)
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func getContextClass(ctx echo.Context) (course.ClassSection, error) {
	if class, ok := ctx.Get(contextClassKey).(course.ClassSection); ok {
		return class, nil
	}
	return course.ClassSection{}, errors.New("class object not found in echo.Context")
}
