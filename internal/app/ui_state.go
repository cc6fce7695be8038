package app

import "sync"

// MapFocus is the point the dashboard map should centre on.
type MapFocus struct {
	Lat  float64
	Lng  float64
	Zoom *int
}

// ReportModal is the state of the "report incident" dialog.
type ReportModal struct {
	Open bool
	Lat  *float64
	Lng  *float64
}

// UIState is ephemeral view state shared between widgets. It is never
// persisted or sent to the server.
type UIState struct {
	mu       sync.Mutex
	mapFocus *MapFocus
	modal    ReportModal

	observers notifier
}

// NewUIState returns UIState with no focus and the modal closed.
func NewUIState() *UIState { return &UIState{} }

// SetMapFocus centres the map on the given point.
func (u *UIState) SetMapFocus(f MapFocus) {
	u.mu.Lock()
	u.mapFocus = &f
	u.mu.Unlock()
	u.observers.notify()
}

// ClearMapFocus removes the current focus.
func (u *UIState) ClearMapFocus() {
	u.mu.Lock()
	u.mapFocus = nil
	u.mu.Unlock()
	u.observers.notify()
}

// MapFocus returns the current focus, if any.
func (u *UIState) MapFocus() (MapFocus, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.mapFocus == nil {
		return MapFocus{}, false
	}
	return *u.mapFocus, true
}

// OpenReportIncidentModal opens the dialog, prefilled with coords when the
// user clicked on the map.
func (u *UIState) OpenReportIncidentModal(coords *[2]float64) {
	m := ReportModal{Open: true}
	if coords != nil {
		lat, lng := coords[0], coords[1]
		m.Lat, m.Lng = &lat, &lng
	}
	u.mu.Lock()
	u.modal = m
	u.mu.Unlock()
	u.observers.notify()
}

// CloseReportIncidentModal closes the dialog and keeps its last coordinates.
func (u *UIState) CloseReportIncidentModal() {
	u.mu.Lock()
	u.modal.Open = false
	u.mu.Unlock()
	u.observers.notify()
}

// ReportModal returns the dialog state.
func (u *UIState) ReportModal() ReportModal {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.modal
}

// Subscribe registers fn to be called after every change.
func (u *UIState) Subscribe(fn func()) (unsubscribe func()) {
	return u.observers.subscribe(fn)
}
