// Package university is the university directory: listing, filtering and the map viewport.
package university

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/gateway"
)

// Filter narrows down the directory listing. Zero values disable a criterion.
type Filter struct {
	Search     string `query:"search" json:"search"`
	State      string `query:"state" json:"state"`
	MaxRanking int    `query:"max_ranking" json:"max_ranking" validate:"min=0"`
	MaxTuition int    `query:"max_tuition" json:"max_tuition" validate:"min=0"`
}

// Match reports whether u satisfies every criterion of f:
// the search term is a case-insensitive substring of the name or the state,
// the state matches exactly, the ranking is at most MaxRanking and
// the lowest tuition is at most MaxTuition.
func (f Filter) Match(u gateway.University) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Name), term) && !strings.Contains(strings.ToLower(u.State), term) {
			return false
		}
	}
	if f.State != "" && u.State != f.State {
		return false
	}
	if f.MaxRanking > 0 && u.Ranking > f.MaxRanking {
		return false
	}
	if f.MaxTuition > 0 && u.TuitionMin > f.MaxTuition {
		return false
	}
	return true
}

// Apply returns the universities matching f, in their original order.
func (f Filter) Apply(univs []gateway.University) []gateway.University {
	filtered := make([]gateway.University, 0, len(univs))
	for _, u := range univs {
		if f.Match(u) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// States returns the distinct states of univs, sorted.
func States(univs []gateway.University) []string {
	seen := make(map[string]bool, len(univs))
	states := make([]string, 0)
	for _, u := range univs {
		if u.State == "" || seen[u.State] {
			continue
		}
		seen[u.State] = true
		states = append(states, u.State)
	}
	sort.Strings(states)
	return states
}

// Listing is what the directory page renders.
type Listing struct {
	Universities []gateway.University `json:"universities"`
	States       []string             `json:"states"`
	Viewport     Viewport             `json:"viewport"`
	Tiles        TileLayer            `json:"tiles"`
}

type Directory struct {
	store   gateway.UniversityStore
	logger  core.Logger
	timeout time.Duration
}

func NewDirectory(store gateway.UniversityStore, logger core.Logger, timeout time.Duration) *Directory {
	return &Directory{store: store, logger: logger, timeout: timeout}
}

// Load reads the universities ordered by ranking. An empty result or a failed read
// yields the sample set; the failure is only logged.
func (d *Directory) Load(ctx context.Context) []gateway.University {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	univs, err := d.store.QueryUniversities(ctx, gateway.Ordering{Field: "ranking", Ascending: true})
	if err != nil {
		d.logger.Error(fmt.Sprintf("fetching universities: %v", err), errors.WithStack(err))
		return SampleUniversities()
	}
	if len(univs) == 0 {
		d.logger.Info("no universities found in the store, using the sample set")
		return SampleUniversities()
	}
	return univs
}

// List loads the directory and applies f. States are computed over the whole directory
// so the selector keeps every option while a filter is active.
func (d *Directory) List(ctx context.Context, f Filter) Listing {
	univs := d.Load(ctx)
	vp, ok := ViewportFor(f.State)
	if !ok {
		vp = DefaultViewport
	}
	return Listing{
		Universities: f.Apply(univs),
		States:       States(univs),
		Viewport:     vp,
		Tiles:        OpenStreetMap,
	}
}

// Courses returns the catalog of a university, by name.
func (d *Directory) Courses(ctx context.Context, universityID string) ([]gateway.Course, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	courses, err := d.store.QueryCourses(ctx, universityID)
	return courses, errors.Wrap(err, "querying courses")
}
