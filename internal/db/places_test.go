package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nimbus/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nimbus.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestInsertAndListPlaces(t *testing.T) {
	database := openTestDB(t)

	places := []model.NewPlace{
		{Name: "London", Lat: 51.5073, Lon: -0.1276, Country: "GB", State: "England"},
		{Name: "London", Lat: 42.9834, Lon: -81.233, Country: "CA", State: "Ontario"},
		{Name: "Cairo", Lat: 30.0444, Lon: 31.2357, Country: "EG"},
	}
	for _, p := range places {
		if _, err := InsertPlace(database, p); err != nil {
			t.Fatalf("InsertPlace(%s) error = %v", p.Name, err)
		}
	}

	got, err := ListPlaces(database, "")
	if err != nil {
		t.Fatalf("ListPlaces() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Name != "Cairo" || got[1].Country != "GB" || got[2].Country != "CA" {
		t.Fatalf("order = %+v", got)
	}
	if got[0].State != "" {
		t.Errorf("State = %q, want empty", got[0].State)
	}
	if got[1].CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}

	filtered, err := ListPlaces(database, "ca")
	if err != nil {
		t.Fatalf("ListPlaces(filter) error = %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered len = %d, want 2 (Cairo and the CA London)", len(filtered))
	}
}

func TestInsertPlaceRejectsBadCoordinates(t *testing.T) {
	database := openTestDB(t)
	if _, err := InsertPlace(database, model.NewPlace{Name: "Nowhere", Lat: 91}); err == nil {
		t.Fatal("InsertPlace() accepted latitude 91")
	}
}

func TestDeleteAndRestorePlace(t *testing.T) {
	database := openTestDB(t)

	id, err := InsertPlace(database, model.NewPlace{Name: "Lagos", Lat: 6.5244, Lon: 3.3792, Country: "NG"})
	if err != nil {
		t.Fatalf("InsertPlace() error = %v", err)
	}
	before, err := GetPlace(database, id)
	if err != nil {
		t.Fatalf("GetPlace() error = %v", err)
	}

	if err := DeletePlace(database, id); err != nil {
		t.Fatalf("DeletePlace() error = %v", err)
	}
	if _, err := GetPlace(database, id); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("GetPlace() after delete error = %v, want ErrPlaceNotFound", err)
	}
	if err := DeletePlace(database, id); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("second DeletePlace() error = %v, want ErrPlaceNotFound", err)
	}

	if err := InsertPlaceWithID(database, before); err != nil {
		t.Fatalf("InsertPlaceWithID() error = %v", err)
	}
	after, err := GetPlace(database, id)
	if err != nil {
		t.Fatalf("GetPlace() after restore error = %v", err)
	}
	if after.Name != before.Name || after.Lat != before.Lat || !after.CreatedAt.Equal(before.CreatedAt.Truncate(time.Second)) {
		t.Fatalf("restored = %+v, want %+v", after, before)
	}
}
