package university

import "sync"

type Viewport struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom int     `json:"zoom"`
}

// TileLayer is the contract with the map tile service.
type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

var (
	// DefaultViewport shows Texas, Oklahoma and Louisiana at once.
	DefaultViewport = Viewport{Lat: 31.9686, Lng: -99.9018, Zoom: 5}

	stateViewports = map[string]Viewport{
		"Texas":     {Lat: 31.9686, Lng: -99.9018, Zoom: 6},
		"Oklahoma":  {Lat: 35.5677, Lng: -97.5164, Zoom: 6},
		"Louisiana": {Lat: 30.9843, Lng: -91.9623, Zoom: 6},
	}

	OpenStreetMap = TileLayer{
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	}
)

// ViewportFor returns the viewport of state. "" is the default viewport;
// ok is false for a state without a known viewport.
func ViewportFor(state string) (vp Viewport, ok bool) {
	if state == "" {
		return DefaultViewport, true
	}
	vp, ok = stateViewports[state]
	return vp, ok
}

// MapView is a long-lived map widget.
type MapView interface {
	SetView(vp Viewport)
}

// MapController drives a MapView from the state selector.
// The view is only told about a viewport when it differs from the current one.
type MapController struct {
	mu      sync.Mutex
	view    MapView
	current Viewport
}

// NewMapController centers view on the default viewport.
func NewMapController(view MapView) *MapController {
	view.SetView(DefaultViewport)
	return &MapController{view: view, current: DefaultViewport}
}

// SelectState moves the map to state and returns the effective viewport.
// A state without a known viewport leaves the map where it is.
func (mc *MapController) SelectState(state string) Viewport {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	vp, ok := ViewportFor(state)
	if !ok || vp == mc.current {
		return mc.current
	}
	mc.current = vp
	mc.view.SetView(vp)
	return vp
}

func (mc *MapController) Current() Viewport {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.current
}
