package main

import (
	"os"
	"path/filepath"
	"testing"

	"dida/config"
	"dida/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.DataCacheDir = t.TempDir()
	return NewApp(cfg, logger.NewLogger())
}

func TestPasteDataOpensSession(t *testing.T) {
	app := newTestApp(t)
	upload, err := app.PasteData("region,sales\nnorth,100\nsouth,200\n", ',', true)
	if err != nil {
		t.Fatalf("PasteData failed: %v", err)
	}
	if upload.SessionID == "" {
		t.Fatal("expected a session ID")
	}
	if upload.Info.Rows != 2 || upload.Info.Columns != 2 {
		t.Fatalf("info = %+v, want 2x2", upload.Info)
	}
	if len(upload.Preview) != 2 {
		t.Fatalf("preview rows = %d, want 2", len(upload.Preview))
	}
}

func TestUploadCSVFile(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,x\n2,y\n"), 0644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	upload, err := app.UploadCSV(path)
	if err != nil {
		t.Fatalf("UploadCSV failed: %v", err)
	}
	if upload.Info.Rows != 2 {
		t.Fatalf("rows = %d, want 2", upload.Info.Rows)
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	cfg := config.Default()
	cfg.DataCacheDir = t.TempDir()

	first := NewApp(cfg, logger.NewLogger())
	upload, err := first.PasteData("a\n1\n2\n3\n", ',', true)
	if err != nil {
		t.Fatalf("PasteData failed: %v", err)
	}

	// A fresh App over the same cache dir reloads the dataset from disk.
	second := NewApp(cfg, logger.NewLogger())
	preview, err := second.Preview(upload.SessionID)
	if err != nil {
		t.Fatalf("Preview after restart failed: %v", err)
	}
	if len(preview) != 3 {
		t.Fatalf("preview rows = %d, want 3", len(preview))
	}
}

func TestDeleteSession(t *testing.T) {
	app := newTestApp(t)
	upload, err := app.PasteData("a\n1\n", ',', true)
	if err != nil {
		t.Fatalf("PasteData failed: %v", err)
	}
	if err := app.DeleteSession(upload.SessionID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := app.Preview(upload.SessionID); err == nil {
		t.Fatal("expected error for deleted session")
	}
}

func TestSetSessionKeyRejectsEmpty(t *testing.T) {
	app := newTestApp(t)
	if err := app.SetSessionKey("s1", "   "); err == nil {
		t.Fatal("expected error for blank key")
	}
}

func TestDetectProblemTypeFacade(t *testing.T) {
	app := newTestApp(t)
	upload, err := app.PasteData("label,x\nyes,1\nno,2\nyes,3\n", ',', true)
	if err != nil {
		t.Fatalf("PasteData failed: %v", err)
	}
	got, err := app.DetectProblemType(upload.SessionID, "label")
	if err != nil {
		t.Fatalf("DetectProblemType failed: %v", err)
	}
	if got != "classification" {
		t.Fatalf("problem type = %s, want classification", got)
	}
	if _, err := app.DetectProblemType(upload.SessionID, "missing"); err == nil {
		t.Fatal("expected error for unknown target")
	}
}
