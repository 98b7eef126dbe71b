package mapsync

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

// Headless is an in-memory Surface, ResultList, Notifier and Form.
// It records everything drawn on it, which makes it usable without a browser.
type Headless struct {
	mu sync.Mutex

	next      Handle
	markers   map[Handle]MarkerSpec
	circles   map[Handle]Circle
	center    orb.Point
	zoom      int
	openPopup Handle

	entries []ListEntry
	summary string
	alerts  []string

	latInput string
	lonInput string
}

// NewHeadless creates an empty headless surface.
func NewHeadless() *Headless {
	return &Headless{
		markers: make(map[Handle]MarkerSpec),
		circles: make(map[Handle]Circle),
	}
}

func (h *Headless) AddMarker(spec MarkerSpec) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	h.markers[h.next] = spec
	return h.next
}

func (h *Headless) DrawCircle(c Circle) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	h.circles[h.next] = c
	return h.next
}

func (h *Headless) RemoveLayer(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.markers, handle)
	delete(h.circles, handle)
	if h.openPopup == handle {
		h.openPopup = 0
	}
}

func (h *Headless) SetView(center orb.Point, zoom int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.center = center
	h.zoom = zoom
}

func (h *Headless) OpenPopup(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.markers[handle]; ok {
		h.openPopup = handle
	}
}

func (h *Headless) Render(entries []ListEntry, summary string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]ListEntry(nil), entries...)
	h.summary = summary
}

func (h *Headless) Alert(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.alerts = append(h.alerts, message)
}

func (h *Headless) SetCoordinates(lat, lon string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latInput = lat
	h.lonInput = lon
}

// Markers returns the markers on the surface in the order they were added.
func (h *Headless) Markers() []MarkerSpec {
	h.mu.Lock()
	defer h.mu.Unlock()

	handles := make([]Handle, 0, len(h.markers))
	for handle := range h.markers {
		handles = append(handles, handle)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	specs := make([]MarkerSpec, 0, len(handles))
	for _, handle := range handles {
		specs = append(specs, h.markers[handle])
	}
	return specs
}

// Circles returns the circles currently drawn.
func (h *Headless) Circles() []Circle {
	h.mu.Lock()
	defer h.mu.Unlock()

	circles := make([]Circle, 0, len(h.circles))
	for _, c := range h.circles {
		circles = append(circles, c)
	}
	return circles
}

// View returns the current centre and zoom.
func (h *Headless) View() (orb.Point, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.center, h.zoom
}

// OpenedMarker returns the marker whose popup is open, if any.
func (h *Headless) OpenedMarker() (MarkerSpec, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	spec, ok := h.markers[h.openPopup]
	return spec, ok
}

// List returns the rendered entries and summary line.
func (h *Headless) List() ([]ListEntry, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]ListEntry(nil), h.entries...), h.summary
}

// Alerts returns every alert shown so far.
func (h *Headless) Alerts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.alerts...)
}

// Inputs returns the coordinate form values.
func (h *Headless) Inputs() (lat, lon string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.latInput, h.lonInput
}

// WriteTo prints the view, circle, markers and list as plain text.
func (h *Headless) WriteTo(w io.Writer) (int64, error) {
	center, zoom := h.View()
	entries, summary := h.List()

	var n int64
	write := func(format string, args ...interface{}) error {
		written, err := fmt.Fprintf(w, format, args...)
		n += int64(written)
		return err
	}

	if err := write("view: %.6f,%.6f zoom %d\n", center.Lat(), center.Lon(), zoom); err != nil {
		return n, err
	}
	for _, c := range h.Circles() {
		if err := write("circle: %.6f,%.6f r=%.0fm\n", c.Center.Lat(), c.Center.Lon(), c.RadiusMeters); err != nil {
			return n, err
		}
	}
	for _, m := range h.Markers() {
		if err := write("marker [%s] %s %.6f,%.6f %s\n", m.Kind, m.ID, m.Position.Lat(), m.Position.Lon(), m.Popup.Title); err != nil {
			return n, err
		}
	}
	if err := write("%s\n", summary); err != nil {
		return n, err
	}
	for i, e := range entries {
		if err := write("%2d. %s (%s) [%s]\n", i+1, e.Name, e.Address, e.ID); err != nil {
			return n, err
		}
	}
	return n, nil
}

// FixedLocator reports a preset position. A nil Position behaves like a device
// without a position fix.
type FixedLocator struct {
	Position *orb.Point
	Denied   bool
}

func (l FixedLocator) CurrentPosition(ctx context.Context) (orb.Point, error) {
	if err := ctx.Err(); err != nil {
		return orb.Point{}, err
	}
	if l.Denied {
		return orb.Point{}, ErrGeolocationDenied
	}
	if l.Position == nil {
		return orb.Point{}, ErrGeolocationUnavailable
	}
	return *l.Position, nil
}
