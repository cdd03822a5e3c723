package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/course"
	"github.com/trezcool/gradebook/core/gradebook"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type gradebookApi struct {
	builder *gradebook.Builder
}

func registerGradebookAPI(g *echo.Group, jwt echo.MiddlewareFunc, courses course.Repository, builder *gradebook.Builder) {
	api := gradebookApi{builder: builder}

	cg := g.Group("/classes/:id", jwt, classAccessMiddleware(courses))
	cg.GET("/gradebook", api.retrieve)
	cg.GET("/gradebook/export", api.export)
}

func (api *gradebookApi) build(ctx echo.Context) (course.ClassSection, gradebook.Result, error) {
	class, err := getContextClass(ctx)
	if err != nil {
		return class, gradebook.Result{}, errors.Wrap(err, "retrieving object from context")
	}
	res, err := api.builder.Build(ctx.Request().Context(), class.ID)
	if err != nil {
		return class, gradebook.Result{}, errors.Wrap(err, "building gradebook")
	}
	return class, res, nil
}

func (api *gradebookApi) retrieve(ctx echo.Context) error {
	_, res, err := api.build(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *gradebookApi) export(ctx echo.Context) error {
	class, res, err := api.build(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = gradebook.WriteXLSX(&buf, res); err != nil {
		return errors.Wrap(err, "exporting gradebook")
	}

	filename := fmt.Sprintf("%s-%s-%d-gradebook.xlsx", class.Code(), class.Term, class.Year)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
