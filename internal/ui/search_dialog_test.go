package ui

import (
	"reflect"
	"testing"

	"nimbus/internal/model"
	"nimbus/internal/viewstate"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSearcher struct {
	queries []string
	cleared int
}

func (f *fakeSearcher) Search(query string) { f.queries = append(f.queries, query) }
func (f *fakeSearcher) Clear()              { f.cleared++ }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeInto(m SearchDialogModel, text string) SearchDialogModel {
	for _, r := range text {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

var londons = []model.LocationCandidate{
	{Name: "London", Lat: 51.5073, Lon: -0.1276, Country: "GB", State: "England"},
	{Name: "London", Lat: 42.9834, Lon: -81.233, Country: "CA", State: "Ontario"},
	{Name: "London", Lat: 51.5073, Lon: -0.1276, Country: "GB", State: "England"},
}

func TestSearchDialogShortQueryResetsImmediately(t *testing.T) {
	searcher := &fakeSearcher{}
	m := typeInto(*NewSearchDialogModel(searcher), "Lo")

	want := []string{"L", "Lo"}
	if !reflect.DeepEqual(searcher.queries, want) {
		t.Fatalf("queries = %v, want %v", searcher.queries, want)
	}
	if m.Query() != "Lo" {
		t.Fatalf("Query() = %q", m.Query())
	}
}

func TestSearchDialogDebounce(t *testing.T) {
	searcher := &fakeSearcher{}
	m := typeInto(*NewSearchDialogModel(searcher), "Lon")

	if len(searcher.queries) != 2 {
		t.Fatalf("queries before tick = %v, want only the short ones", searcher.queries)
	}

	m, _ = m.Update(debounceTick{seq: m.seq - 1})
	if len(searcher.queries) != 2 {
		t.Fatalf("stale tick issued a search: %v", searcher.queries)
	}

	m, _ = m.Update(debounceTick{seq: m.seq})
	if got := searcher.queries[len(searcher.queries)-1]; got != "Lon" {
		t.Fatalf("last query = %q, want Lon", got)
	}

	pending := m.seq
	m = typeInto(m, "d")
	m, _ = m.Update(debounceTick{seq: pending})
	if got := searcher.queries[len(searcher.queries)-1]; got != "Lon" {
		t.Fatalf("tick from before the last keystroke searched %q", got)
	}
	m, _ = m.Update(debounceTick{seq: m.seq})
	if got := searcher.queries[len(searcher.queries)-1]; got != "Lond" {
		t.Fatalf("last query = %q, want Lond", got)
	}
}

func TestSearchDialogSelectKeepsDuplicates(t *testing.T) {
	m := NewSearchDialogModel(&fakeSearcher{})
	m.SetState(viewstate.SearchState{Locations: londons, SearchQuery: "London"})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}

	msg, ok := cmd().(model.LocationSelectedMsg)
	if !ok {
		t.Fatalf("expected LocationSelectedMsg, got %T", cmd())
	}
	if msg.Location != londons[2] {
		t.Fatalf("selected %+v, want the third entry", msg.Location)
	}
}

func TestSearchDialogCursorStaysInRange(t *testing.T) {
	m := NewSearchDialogModel(&fakeSearcher{})
	m.SetState(viewstate.SearchState{Locations: londons})
	m.cursor = 2

	m.SetState(viewstate.SearchState{Locations: londons[:1]})
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}

	m.SetState(viewstate.SearchState{Locations: []model.LocationCandidate{}})
	if _, ok := m.Selected(); ok {
		t.Fatal("Selected() on empty results should report false")
	}
}

func TestSearchDialogCancelAndSave(t *testing.T) {
	searcher := &fakeSearcher{}
	m := NewSearchDialogModel(searcher)
	m.SetState(viewstate.SearchState{Locations: londons[:2]})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	save, ok := cmd().(saveCandidateMsg)
	if !ok || save.candidate != londons[0] {
		t.Fatalf("ctrl+s produced %#v", cmd())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(model.SearchCancelledMsg); !ok {
		t.Fatalf("esc produced %T", cmd())
	}
	if searcher.cleared != 1 {
		t.Fatalf("cleared = %d, want 1", searcher.cleared)
	}
}

func TestSearchDialogView(t *testing.T) {
	m := NewSearchDialogModel(&fakeSearcher{})
	m.SetState(viewstate.SearchState{Locations: londons[:2], SearchQuery: "London"})

	view := m.View(100, 30)
	for _, want := range []string{"London, England, GB", "London, Ontario, CA"} {
		if !containsText(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}

	m.SetState(viewstate.SearchState{Error: "Couldn't reach server. Check your internet connection.", Locations: londons[:1]})
	if view := m.View(100, 30); !containsText(view, "Couldn't reach server") || !containsText(view, "London, England, GB") {
		t.Errorf("error view should keep results and show the message:\n%s", view)
	}
}
