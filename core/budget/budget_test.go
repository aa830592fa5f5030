package budget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edumedsolutions/edumed/core/budget"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "", want: 0},
		{in: "abc", want: 0},
		{in: "30000", want: 30000},
		{in: " 12.5", want: 12.5},
		{in: "12abc", want: 12},
		{in: "-5", want: -5},
		{in: ".5", want: 0.5},
		{in: "1e3", want: 1000},
		{in: "1e", want: 1},
		{in: "1e999", want: 0},
		{in: "NaN", want: 0},
		{in: "Infinity", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, budget.ParseAmount(tt.in))
		})
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		in   budget.Inputs
		want budget.Estimate
	}{
		{
			name: "all fields",
			in:   budget.Inputs{Tuition: "30000", Living: "1000", Books: "500", Insurance: "800"},
			want: budget.Estimate{Tuition: 30000, Living: 12000, Books: 1000, Insurance: 800, Total: 43800},
		},
		{name: "empty", in: budget.Inputs{}, want: budget.Estimate{}},
		{
			name: "garbage is zero",
			in:   budget.Inputs{Tuition: "lots", Living: "100/month"},
			want: budget.Estimate{Living: 1200, Total: 1200},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, budget.Calculate(tt.in))
		})
	}
}
