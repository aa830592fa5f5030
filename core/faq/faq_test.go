package faq

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core"
)

func ids(es []Entry) []string {
	res := make([]string, 0, len(es))
	for _, e := range es {
		res = append(res, e.ID)
	}
	return res
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		search   string
		want     []string
	}{
		{name: "admissions", category: Admissions, want: []string{"1", "2"}},
		{name: "visa I-20", category: Visa, search: "I-20", want: []string{"3"}},
		{name: "case-insensitive answer", category: Visa, search: "passport", want: []string{"3"}},
		{name: "case-insensitive question", category: PostArrival, search: "HOUSING", want: []string{"4"}},
		{name: "search stays within category", category: Admissions, search: "I-20", want: []string{}},
		{name: "unknown category", category: "tuition", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(tt.category, tt.search)))
		})
	}
}

func TestAccordion(t *testing.T) {
	acc := NewAccordion()
	assert.False(t, acc.IsOpen("1"))

	assert.True(t, acc.Toggle("1"))
	assert.True(t, acc.Toggle("3"))
	assert.True(t, acc.IsOpen("1"))
	assert.True(t, acc.IsOpen("3"), "several entries can be open at once")

	assert.False(t, acc.Toggle("1"))
	assert.False(t, acc.IsOpen("1"))
	assert.True(t, acc.IsOpen("3"))
}

func TestQuery_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)

	q := Query{Search: "  visa "}
	require.NoError(t, q.Validate(validate))
	assert.Equal(t, Admissions, q.Category)
	assert.Equal(t, "visa", q.Search)

	q = Query{Category: "scholarships"}
	err := q.Validate(validate)
	errs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "want validator.ValidationErrors, got %v", err)
	assert.Equal(t, "faqcategory", errs[0].Tag())
	assert.Equal(t, map[string]string{"category": "category must be one of admissions, visa or post-arrival"},
		core.TranslateValidationErrors(errs, translator))
}
