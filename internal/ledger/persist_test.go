package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "flights.json"))
}

func TestStore_RoundTrip(t *testing.T) {
	store := testStore(t)

	l := New(100, 50)
	l.MarkReported("f1", domain.MilestoneTakeoff)
	l.MarkReported("f1", domain.MilestoneLanding)
	l.MarkReported("f2", domain.MilestoneCompletion)
	l.MarkReported("f3", domain.MilestoneTakeoff)

	if err := store.Save(l); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load(100, 50)

	if got.Len() != 3 {
		t.Fatalf("Len = %d, want 3", got.Len())
	}
	for i, want := range []string{"f1", "f2", "f3"} {
		if got.FlightIDs()[i] != want {
			t.Errorf("insertion order not preserved: ids[%d] = %s, want %s", i, got.FlightIDs()[i], want)
		}
	}
	if !got.HasReported("f1", domain.MilestoneTakeoff) || !got.HasReported("f1", domain.MilestoneLanding) {
		t.Error("f1 milestones lost in round-trip")
	}
	if !got.HasReported("f2", domain.MilestoneCompletion) {
		t.Error("f2 completion lost in round-trip")
	}
	if got.HasReported("f3", domain.MilestoneLanding) {
		t.Error("round-trip added a milestone that was never marked")
	}
}

func TestStore_Load_MissingFile(t *testing.T) {
	store := testStore(t)

	l := store.Load(100, 50)
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 for missing file", l.Len())
	}
}

func TestStore_Load_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.json")
	if err := os.WriteFile(path, []byte(`{"schema_version":1,"flights":[{"flight`), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewStore(path).Load(100, 50)
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 for truncated file", l.Len())
	}
}

func TestStore_Load_UnknownSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.json")
	if err := os.WriteFile(path, []byte(`{"schema_version":99,"flights":[{"flight_id":"f1","milestones":{"takeoff":true}}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewStore(path).Load(100, 50)
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0 for unknown schema version", l.Len())
	}
}

func TestStore_Save_ReplacesPreviousFile(t *testing.T) {
	store := testStore(t)

	l := New(100, 50)
	l.MarkReported("f1", domain.MilestoneTakeoff)
	if err := store.Save(l); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	l.MarkReported("f2", domain.MilestoneTakeoff)
	if err := store.Save(l); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got := store.Load(100, 50)
	if got.Len() != 2 {
		t.Errorf("Len = %d, want 2 after rewrite", got.Len())
	}
}
