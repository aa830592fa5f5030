// Package faq serves the frequently asked questions.
package faq

import (
	"strings"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edumedsolutions/edumed/core"
)

type Category string

const (
	Admissions  Category = "admissions"
	Visa        Category = "visa"
	PostArrival Category = "post-arrival"
)

var Categories = []Category{Admissions, Visa, PostArrival}

func (c Category) Valid() bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

type Entry struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
}

var entries = []Entry{
	{
		ID:       "1",
		Category: Admissions,
		Question: "What are the basic requirements for applying to U.S. universities?",
		Answer:   "Basic requirements typically include academic transcripts, standardized test scores (SAT/ACT), English proficiency test scores (TOEFL/IELTS), letters of recommendation, and a personal statement. Specific requirements may vary by university.",
	},
	{
		ID:       "2",
		Category: Admissions,
		Question: "When should I start my application process?",
		Answer:   "We recommend starting the application process 12-18 months before your intended start date. This gives you enough time to prepare and take required tests, gather documents, and meet application deadlines.",
	},
	{
		ID:       "3",
		Category: Visa,
		Question: "What documents do I need for a student visa application?",
		Answer:   "Required documents include Form I-20, DS-160 form, passport, academic transcripts, standardized test scores, proof of financial support, and photographs. Additional documents may be required based on individual circumstances.",
	},
	{
		ID:       "4",
		Category: PostArrival,
		Question: "How can I find housing near my university?",
		Answer:   "Most universities offer on-campus housing options for international students. We can help you explore both on-campus and off-campus housing options, considering factors like location, cost, and safety.",
	},
}

// All returns a copy of every entry.
func All() []Entry {
	all := make([]Entry, len(entries))
	copy(all, entries)
	return all
}

// Query is the FAQ page selection. The page opens on the admissions category.
type Query struct {
	Category Category `query:"category" json:"category" validate:"omitempty,faqcategory"`
	Search   string   `query:"search" json:"search"`
}

func (q *Query) Validate(validate *validator.Validate) error {
	q.Search = core.CleanString(q.Search)
	if q.Category == "" {
		q.Category = Admissions
	}
	return validate.Struct(q)
}

// Filter returns the entries of category whose question or answer contains search (case-insensitive).
func Filter(category Category, search string) []Entry {
	term := strings.ToLower(search)
	filtered := make([]Entry, 0)
	for _, e := range entries {
		if e.Category != category {
			continue
		}
		if term == "" ||
			strings.Contains(strings.ToLower(e.Question), term) ||
			strings.Contains(strings.ToLower(e.Answer), term) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Accordion tracks which entries are expanded; any number may be open at once.
type Accordion struct {
	mu   sync.RWMutex
	open map[string]bool
}

func NewAccordion() *Accordion {
	return &Accordion{open: make(map[string]bool)}
}

// Toggle flips entry id and reports whether it is now open.
func (a *Accordion) Toggle(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open[id] {
		delete(a.open, id)
		return false
	}
	a.open[id] = true
	return true
}

func (a *Accordion) IsOpen(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.open[id]
}

var (
	faqCategoryTag  = "faqcategory"
	faqCategoryText = "{0} must be one of admissions, visa or post-arrival"
)

// RegisterValidators registers the faqcategory tag.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(faqCategoryTag, func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, faqCategoryTag, faqCategoryText)
}
