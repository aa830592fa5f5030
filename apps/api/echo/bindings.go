package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/budget"
	"github.com/edumedsolutions/edumed/core/faq"
	"github.com/edumedsolutions/edumed/core/university"
)

const notANumberText = "must be a whole number"

func queryInt(ctx echo.Context, name string, dst *int, fldErrs *[]core.FieldError) {
	val := ctx.QueryParam(name)
	if val == "" {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*fldErrs = append(*fldErrs, core.FieldError{Field: name, Error: notANumberText})
		return
	}
	*dst = n
}

func bindUniversityFilter(ctx echo.Context) (university.Filter, error) {
	f := university.Filter{
		Search: core.CleanString(ctx.QueryParam("search")),
		State:  core.CleanString(ctx.QueryParam("state")),
	}
	var fldErrs []core.FieldError
	queryInt(ctx, "max_ranking", &f.MaxRanking, &fldErrs)
	queryInt(ctx, "max_tuition", &f.MaxTuition, &fldErrs)
	if len(fldErrs) > 0 {
		return university.Filter{}, core.NewValidationError(nil, fldErrs...)
	}
	return f, nil
}

func bindFAQQuery(ctx echo.Context) faq.Query {
	return faq.Query{
		Category: faq.Category(ctx.QueryParam("category")),
		Search:   ctx.QueryParam("search"),
	}
}

func bindBudgetInputs(ctx echo.Context) budget.Inputs {
	return budget.Inputs{
		Tuition:   ctx.QueryParam("tuition"),
		Living:    ctx.QueryParam("living"),
		Books:     ctx.QueryParam("books"),
		Insurance: ctx.QueryParam("insurance"),
	}
}
