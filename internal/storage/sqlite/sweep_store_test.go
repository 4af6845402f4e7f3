package sqlite

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
	"github.com/ridgeline-data/ascent.report/internal/elevation/sweep"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSweepRoundTrip(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))

	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := SweepRecord{
		Status:     "running",
		Request:    json.RawMessage(`{"workers":4}`),
		StartedAt:  started,
		ComboCount: 12,
		TrackCount: 3,
	}
	if err := store.InsertSweep(&rec); err != nil {
		t.Fatalf("InsertSweep: %v", err)
	}
	if rec.SweepID == "" {
		t.Fatal("SweepID should be generated")
	}

	got, err := store.GetSweep(rec.SweepID)
	if err != nil {
		t.Fatalf("GetSweep: %v", err)
	}
	if got.Status != "running" || got.ComboCount != 12 || got.TrackCount != 3 {
		t.Errorf("got %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt should be nil before completion")
	}
	if string(got.Request) != `{"workers":4}` {
		t.Errorf("Request = %s", got.Request)
	}

	completed := started.Add(90 * time.Second)
	if err := store.CompleteSweep(rec.SweepID, "complete", completed, ""); err != nil {
		t.Fatalf("CompleteSweep: %v", err)
	}
	got, err = store.GetSweep(rec.SweepID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "complete" || got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Errorf("completed record = %+v", got)
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want empty", got.Error)
	}
}

func TestCompleteSweepWithError(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))

	rec := SweepRecord{Status: "running", StartedAt: time.Now()}
	if err := store.InsertSweep(&rec); err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteSweep(rec.SweepID, "error", time.Now(), "sweep stopped"); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetSweep(rec.SweepID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "error" || got.Error != "sweep stopped" {
		t.Errorf("got status %q error %q", got.Status, got.Error)
	}
}

func TestCompleteSweepNotFound(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))
	err := store.CompleteSweep("missing", "complete", time.Now(), "")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestGetSweepNotFound(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))
	if _, err := store.GetSweep("missing"); err == nil {
		t.Error("expected error for missing sweep")
	}
}

func TestResultsRoundTrip(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))

	rec := SweepRecord{Status: "complete", StartedAt: time.Now()}
	if err := store.InsertSweep(&rec); err != nil {
		t.Fatal(err)
	}

	ranked := []sweep.ScoredResult{
		{ComboResult: sweep.ComboResult{
			ComboIndex: 3, Params: elevation.DefaultParams(),
			MeanAccuracy: 101.5, MedianAccuracy: 101, AccuracyStddev: 1.2,
			Within2: 2, Within5: 3, Within10: 3, Within15: 3, Within20: 3,
			MedianRatio: 98, GainReductionPct: 22, LossReductionPct: 20,
		}, Score: 55.5},
		{ComboResult: sweep.ComboResult{
			ComboIndex: 1, Params: elevation.ConservativeParams(),
			MeanAccuracy: 92, Outside: 3, MedianRatio: 140,
		}, Score: 12.25},
	}
	records := make([]ResultRecord, len(ranked))
	for i, r := range ranked {
		records[i] = ResultRecordFrom(rec.SweepID, i+1, r)
	}
	if err := store.InsertResults(records); err != nil {
		t.Fatalf("InsertResults: %v", err)
	}

	got, err := store.TopResults(rec.SweepID, 10)
	if err != nil {
		t.Fatalf("TopResults: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Rank != 1 || got[0].ComboIndex != 3 || got[0].Score != 55.5 {
		t.Errorf("top result = %+v", got[0])
	}
	if got[0].Within2 != 2 || got[0].Within5 != 3 || got[0].MedianRatio != 98 {
		t.Errorf("top result aggregates = %+v", got[0])
	}
	if got[1].Rank != 2 || got[1].Outside != 3 {
		t.Errorf("second result = %+v", got[1])
	}

	// The parameters survive as JSON.
	var p elevation.Params
	if err := json.Unmarshal(got[0].Params, &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if p.Alpha != elevation.DefaultParams().Alpha {
		t.Errorf("params alpha = %f", p.Alpha)
	}

	// Limit applies.
	got, err = store.TopResults(rec.SweepID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Rank != 1 {
		t.Errorf("limited results = %+v", got)
	}
}

func TestInsertResultsEmpty(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))
	if err := store.InsertResults(nil); err != nil {
		t.Errorf("empty insert should be a no-op, got %v", err)
	}
}

func TestListSweeps(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := SweepRecord{Status: "complete", StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.InsertSweep(&rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListSweeps(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].StartedAt.After(got[i-1].StartedAt) {
			t.Errorf("sweeps not newest-first at %d", i)
		}
	}

	got, err = store.ListSweeps(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("limit ignored: len = %d", len(got))
	}
}

func TestDeleteSweepCascades(t *testing.T) {
	store := NewSweepStore(setupTestDB(t))

	rec := SweepRecord{Status: "complete", StartedAt: time.Now()}
	if err := store.InsertSweep(&rec); err != nil {
		t.Fatal(err)
	}
	records := []ResultRecord{ResultRecordFrom(rec.SweepID, 1, sweep.ScoredResult{})}
	if err := store.InsertResults(records); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteSweep(rec.SweepID); err != nil {
		t.Fatalf("DeleteSweep: %v", err)
	}
	if _, err := store.GetSweep(rec.SweepID); err == nil {
		t.Error("sweep should be gone")
	}
	results, err := store.TopResults(rec.SweepID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results should cascade-delete, got %d rows", len(results))
	}

	if err := store.DeleteSweep(rec.SweepID); err == nil {
		t.Error("second delete should report not found")
	}
}
