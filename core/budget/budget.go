// Package budget estimates the yearly cost of studying abroad.
package budget

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	monthsPerYear    = 12
	semestersPerYear = 2
)

var numericPrefix = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Inputs are the raw calculator fields, as typed by the user.
type Inputs struct {
	Tuition   string `query:"tuition" json:"tuition"`     // per year
	Living    string `query:"living" json:"living"`       // per month
	Books     string `query:"books" json:"books"`         // per semester
	Insurance string `query:"insurance" json:"insurance"` // per year
}

// Estimate is the yearly breakdown.
type Estimate struct {
	Tuition   float64 `json:"tuition"`
	Living    float64 `json:"living"`
	Books     float64 `json:"books"`
	Insurance float64 `json:"insurance"`
	Total     float64 `json:"total"`
}

// ParseAmount reads the leading number of s ("12abc" is 12, "1e3" is 1000).
// Anything without a leading number, or out of range, is 0.
func ParseAmount(s string) float64 {
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Calculate returns tuition + living*12 + books*2 + insurance.
func Calculate(in Inputs) Estimate {
	est := Estimate{
		Tuition:   ParseAmount(in.Tuition),
		Living:    ParseAmount(in.Living) * monthsPerYear,
		Books:     ParseAmount(in.Books) * semestersPerYear,
		Insurance: ParseAmount(in.Insurance),
	}
	est.Total = est.Tuition + est.Living + est.Books + est.Insurance
	return est
}
