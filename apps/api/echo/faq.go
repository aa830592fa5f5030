package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/edumedsolutions/edumed/core/faq"
)

type faqResponse struct {
	Category   faq.Category   `json:"category"`
	Categories []faq.Category `json:"categories"`
	Results    []faq.Entry    `json:"results"`
}

func registerFAQAPI(g *echo.Group, validate *validator.Validate) {
	g.GET("/faqs", func(ctx echo.Context) error {
		q := bindFAQQuery(ctx)
		if err := q.Validate(validate); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, faqResponse{
			Category:   q.Category,
			Categories: faq.Categories,
			Results:    faq.Filter(q.Category, q.Search),
		})
	})
}
