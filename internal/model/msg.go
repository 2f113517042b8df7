package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// PlacesLoadedMsg is sent when saved places are loaded.
type PlacesLoadedMsg struct {
	Places []Place
}

// PlaceSavedMsg is sent when a place is bookmarked.
type PlaceSavedMsg struct {
	ID    int64
	After Place
}

// DeletePlaceMsg is sent after a saved place is deleted.
type DeletePlaceMsg struct {
	ID      int64
	Deleted Place
}

// ConfigReloadedMsg is sent when the config file changes on disk.
type ConfigReloadedMsg struct {
	Units string
}

// SearchCancelledMsg is sent when the search dialog is dismissed.
type SearchCancelledMsg struct{}

// LocationSelectedMsg is sent when a search result is picked.
type LocationSelectedMsg struct {
	Location LocationCandidate
}

// Screen represents different app screens.
type Screen int

const (
	ScreenWeather Screen = iota
	ScreenForecast
	ScreenPlaces
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
