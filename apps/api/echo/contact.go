package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core/contact"
)

type contactApi struct {
	svc      *contact.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, svc *contact.Service, validate *validator.Validate, limit echo.MiddlewareFunc) {
	api := contactApi{svc: svc, validate: validate}
	g.POST("/contact", api.submit, limit)
}

// Handlers

func (api *contactApi) submit(ctx echo.Context) error {
	var form contact.Form
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to contact.Form")
	}
	if err := form.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), form)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
