package university_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/university"
	"github.com/edumedsolutions/edumed/storage/database/inmem"
	testutil "github.com/edumedsolutions/edumed/tests"
)

func names(univs []gateway.University) []string {
	nms := make([]string, 0, len(univs))
	for _, u := range univs {
		nms = append(nms, u.Name)
	}
	return nms
}

func TestFilter_Apply(t *testing.T) {
	univs := university.SampleUniversities()

	tests := []struct {
		name   string
		filter university.Filter
		want   []string
	}{
		{name: "no filter", filter: university.Filter{}, want: names(univs)},
		{name: "search by name", filter: university.Filter{Search: "rice"}, want: []string{"Rice University"}},
		{
			name:   "search matches state",
			filter: university.Filter{Search: "LOUISIANA"},
			want:   []string{"Tulane University", "Louisiana State University"},
		},
		{
			name:   "state only",
			filter: university.Filter{State: "Texas"},
			want:   []string{"University of Texas at Austin", "Texas A&M University", "Rice University"},
		},
		{name: "search and state", filter: university.Filter{Search: "university", State: "Oklahoma"}, want: []string{"University of Oklahoma"}},
		{name: "state is exact", filter: university.Filter{State: "texas"}, want: []string{}},
		{name: "no match", filter: university.Filter{Search: "harvard"}, want: []string{}},
		{
			name:   "max ranking",
			filter: university.Filter{MaxRanking: 20},
			want:   []string{"University of Texas at Austin", "Rice University"},
		},
		{
			name:   "max tuition",
			filter: university.Filter{MaxTuition: 33000},
			want:   []string{"University of Oklahoma", "Louisiana State University"},
		},
		{
			name:   "all criteria",
			filter: university.Filter{Search: "a", State: "Louisiana", MaxRanking: 50, MaxTuition: 30000},
			want:   []string{"Louisiana State University"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(tt.filter.Apply(univs)))
		})
	}
}

func TestStates(t *testing.T) {
	assert.Equal(t, []string{"Louisiana", "Oklahoma", "Texas"}, university.States(university.SampleUniversities()))
	assert.Empty(t, university.States(nil))
}

func TestViewportFor(t *testing.T) {
	tests := []struct {
		state  string
		want   university.Viewport
		wantOk bool
	}{
		{state: "", want: university.Viewport{Lat: 31.9686, Lng: -99.9018, Zoom: 5}, wantOk: true},
		{state: "Texas", want: university.Viewport{Lat: 31.9686, Lng: -99.9018, Zoom: 6}, wantOk: true},
		{state: "Oklahoma", want: university.Viewport{Lat: 35.5677, Lng: -97.5164, Zoom: 6}, wantOk: true},
		{state: "Louisiana", want: university.Viewport{Lat: 30.9843, Lng: -91.9623, Zoom: 6}, wantOk: true},
		{state: "Ohio"},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			vp, ok := university.ViewportFor(tt.state)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, vp)
		})
	}
}

type mapView struct {
	views []university.Viewport
}

func (m *mapView) SetView(vp university.Viewport) { m.views = append(m.views, vp) }

func TestMapController(t *testing.T) {
	view := new(mapView)
	mc := university.NewMapController(view)
	require.Equal(t, []university.Viewport{university.DefaultViewport}, view.views)

	texas, _ := university.ViewportFor("Texas")
	assert.Equal(t, texas, mc.SelectState("Texas"))
	assert.Equal(t, texas, mc.SelectState("Texas")) // unchanged: no command
	assert.Equal(t, texas, mc.SelectState("Ohio"))  // unknown: map stays put
	assert.Equal(t, university.DefaultViewport, mc.SelectState(""))

	assert.Equal(t, []university.Viewport{university.DefaultViewport, texas, university.DefaultViewport}, view.views)
	assert.Equal(t, university.DefaultViewport, mc.Current())
}

type failingStore struct {
	gateway.UniversityStore
}

func (failingStore) QueryUniversities(context.Context, ...gateway.Ordering) ([]gateway.University, error) {
	return nil, &gateway.RemoteError{Status: 503, Message: "service unavailable"}
}

func TestDirectory_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("store error falls back to samples", func(t *testing.T) {
		logger := testutil.NewLogger(t)
		dir := university.NewDirectory(failingStore{}, logger, 0)

		univs := dir.Load(ctx)
		assert.Equal(t, university.SampleUniversities(), univs)
		require.Len(t, logger.Entries(), 1)
		assert.Contains(t, logger.Entries()[0], "ERROR: fetching universities")
	})

	t.Run("empty store falls back to samples", func(t *testing.T) {
		dir := university.NewDirectory(inmemdb.NewGateway(inmemdb.Open()), testutil.NewLogger(t), 0)
		assert.Len(t, dir.Load(ctx), 6)
	})

	t.Run("ordered by ranking", func(t *testing.T) {
		store := inmemdb.NewGateway(inmemdb.Open())
		_, err := store.CreateUniversities(ctx,
			gateway.University{Name: "B", State: "Texas", Ranking: 20},
			gateway.University{Name: "A", State: "Ohio", Ranking: 5},
		)
		require.NoError(t, err)

		dir := university.NewDirectory(store, testutil.NewLogger(t), 0)
		listing := dir.List(ctx, university.Filter{State: "Texas"})
		assert.Equal(t, []string{"B"}, names(listing.Universities))
		assert.Equal(t, []string{"Ohio", "Texas"}, listing.States)
		assert.Equal(t, 6, listing.Viewport.Zoom)
		assert.Equal(t, university.OpenStreetMap, listing.Tiles)

		assert.Equal(t, []string{"A", "B"}, names(dir.Load(ctx)))
	})

	t.Run("unknown state uses default viewport", func(t *testing.T) {
		dir := university.NewDirectory(failingStore{}, testutil.NewLogger(t), 0)
		listing := dir.List(ctx, university.Filter{State: "Ohio"})
		assert.Empty(t, listing.Universities)
		assert.Equal(t, university.DefaultViewport, listing.Viewport)
	})
}
