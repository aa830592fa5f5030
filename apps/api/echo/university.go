package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core/university"
)

type universityApi struct {
	dir      *university.Directory
	validate *validator.Validate
}

func registerUniversityAPI(g *echo.Group, dir *university.Directory, validate *validator.Validate) {
	api := universityApi{dir: dir, validate: validate}

	ug := g.Group("/universities")
	ug.GET("", api.list)
	ug.GET("/:id/courses", api.courses)
}

// Handlers

func (api *universityApi) list(ctx echo.Context) error {
	f, err := bindUniversityFilter(ctx)
	if err != nil {
		return err
	}
	if err = api.validate.Struct(f); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.dir.List(ctx.Request().Context(), f))
}

func (api *universityApi) courses(ctx echo.Context) error {
	courses, err := api.dir.Courses(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}
