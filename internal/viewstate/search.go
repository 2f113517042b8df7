package viewstate

import (
	"context"
	"strings"
	"unicode/utf8"

	"nimbus/internal/model"
	"nimbus/internal/resource"
)

// MinQueryLength is the shortest query sent to the geocoder.
const MinQueryLength = 3

// LocationSource issues geocoding reads.
type LocationSource interface {
	SearchLocations(ctx context.Context, query string) <-chan resource.Resource[[]model.LocationCandidate]
}

// SearchState is the search dialog state.
type SearchState struct {
	IsLoading   bool
	Locations   []model.LocationCandidate
	Error       string
	SearchQuery string
}

// SearchHolder owns the search dialog state.
type SearchHolder struct {
	*holder[SearchState]
	source LocationSource
}

// NewSearchHolder creates a holder reading from source.
func NewSearchHolder(source LocationSource) *SearchHolder {
	return &SearchHolder{
		holder: newHolder(SearchState{}),
		source: source,
	}
}

// Search looks up query. Queries shorter than MinQueryLength reset the
// results without touching the network.
func (h *SearchHolder) Search(query string) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		h.reset(func(SearchState) SearchState {
			return SearchState{Locations: []model.LocationCandidate{}, SearchQuery: query}
		})
		return
	}

	ctx, seq, ok := h.begin(func(s SearchState) SearchState {
		s.SearchQuery = query
		return s
	})
	if !ok {
		return
	}
	follow(h.holder, seq, h.source.SearchLocations(ctx, query), foldSearch)
}

// Clear cancels any search in flight and resets the state.
func (h *SearchHolder) Clear() {
	h.reset(func(SearchState) SearchState { return SearchState{} })
}

func foldSearch(s SearchState, r resource.Resource[[]model.LocationCandidate]) SearchState {
	switch v := r.(type) {
	case resource.Loading[[]model.LocationCandidate]:
		s.IsLoading = true
		s.Error = ""
	case resource.Success[[]model.LocationCandidate]:
		s.IsLoading = false
		s.Error = ""
		s.Locations = v.Data
		if s.Locations == nil {
			s.Locations = []model.LocationCandidate{}
		}
	case resource.Error[[]model.LocationCandidate]:
		s.IsLoading = false
		s.Error = v.Message
	}
	return s
}
