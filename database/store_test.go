package database

import (
	"testing"
	"time"

	"dida/dataset"
	"dida/mlprep"
)

func storeTable(t *testing.T) *dataset.Table {
	t.Helper()
	when, _ := time.Parse("2006-01-02", "2024-05-01")
	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("id", []interface{}{1.0, 2.0, 3.0}),
		dataset.NewSeries("name", []interface{}{"alice", "bob", nil}),
		dataset.NewSeries("active", []interface{}{true, false, true}),
		dataset.NewSeries("joined", []interface{}{when, when.AddDate(0, 1, 0), nil}),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	return table
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	original := storeTable(t)

	if err := store.SaveCurrent("session-1", original); err != nil {
		t.Fatalf("SaveCurrent failed: %v", err)
	}
	restored, err := store.LoadCurrent("session-1")
	if err != nil {
		t.Fatalf("LoadCurrent failed: %v", err)
	}

	if restored.NumRows() != 3 || restored.NumCols() != 4 {
		t.Fatalf("restored %dx%d, want 3x4", restored.NumRows(), restored.NumCols())
	}
	id, _ := restored.Column("id")
	if id.Values[0] != 1.0 {
		t.Fatalf("numeric cell = %v (%T), want 1.0", id.Values[0], id.Values[0])
	}
	name, _ := restored.Column("name")
	if name.Values[2] != nil {
		t.Fatalf("null cell should survive round trip, got %v", name.Values[2])
	}
	active, _ := restored.Column("active")
	if active.Values[1] != false {
		t.Fatalf("boolean cell = %v (%T), want false", active.Values[1], active.Values[1])
	}
	joined, _ := restored.Column("joined")
	if _, ok := joined.Values[0].(time.Time); !ok {
		t.Fatalf("datetime cell = %T, want time.Time", joined.Values[0])
	}
}

func TestStoreSessionLifecycle(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	if store.HasSession("s1") {
		t.Fatal("fresh store should have no sessions")
	}
	if err := store.SaveCurrent("s1", storeTable(t)); err != nil {
		t.Fatalf("SaveCurrent failed: %v", err)
	}
	if !store.HasSession("s1") {
		t.Fatal("session not visible after save")
	}
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0] != "s1" {
		t.Fatalf("sessions = %v, want [s1]", sessions)
	}
	if err := store.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if store.HasSession("s1") {
		t.Fatal("session survived deletion")
	}
}

func TestStoreSplitArtifacts(t *testing.T) {
	var feature, target []interface{}
	for i := 0; i < 40; i++ {
		feature = append(feature, float64(i))
		if i%2 == 0 {
			target = append(target, "yes")
		} else {
			target = append(target, "no")
		}
	}
	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("f", feature),
		dataset.NewSeries("label", target),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	outcome, err := mlprep.Prepare(table, "label", mlprep.Options{}, nil)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	store := NewStore(t.TempDir(), nil)
	if err := store.SaveSplit("s1", outcome); err != nil {
		t.Fatalf("SaveSplit failed: %v", err)
	}
	xTrain, xTest, yTrain, yTest, err := store.LoadSplit("s1")
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	if xTrain.NumRows() != outcome.XTrain.NumRows() || xTest.NumRows() != outcome.XTest.NumRows() {
		t.Fatal("feature splits changed size in storage")
	}
	if yTrain.Len() != outcome.YTrain.Len() || yTest.Len() != outcome.YTest.Len() {
		t.Fatal("target splits changed size in storage")
	}
}
