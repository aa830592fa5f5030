package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edumedsolutions/edumed/core/budget"
)

func registerBudgetAPI(g *echo.Group) {
	g.GET("/budget", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, budget.Calculate(bindBudgetInputs(ctx)))
	})
	g.GET("/resources", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, budget.Resources())
	})
}
