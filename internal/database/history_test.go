package database

import (
	"path/filepath"
	"testing"
	"time"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
)

func newTestHistory(t *testing.T) *SQLiteHistory {
	t.Helper()

	h, err := NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("failed to create history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func sampleReport(id string, started time.Time) *check.RunReport {
	return &check.RunReport{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(42 * time.Second),
		Results: []check.Result{
			{Phone: "79990000001", Proxy: "10.0.0.1:1080", Outcome: check.OutcomeAuthorized()},
			{Phone: "79990000002", Proxy: "10.0.0.2:1080", Outcome: check.OutcomeUnauthorized(), Quarantined: true},
			{Phone: "79990000003", Proxy: "10.0.0.1:1080", Outcome: check.OutcomeRateLimited(90 * time.Second)},
			{Phone: "79990000004", Outcome: check.OutcomeMalformed("missing app_hash")},
		},
	}
}

func TestSQLiteHistory_RecordAndList(t *testing.T) {
	h := newTestHistory(t)
	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	if err := h.RecordRun(sampleReport("run-1", started)); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := h.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != "run-1" {
		t.Errorf("ID = %q, want run-1", got.ID)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.Duration() != 42*time.Second {
		t.Errorf("Duration() = %s, want 42s", got.Duration())
	}
	if len(got.Results) != 4 {
		t.Fatalf("len(Results) = %d, want 4", len(got.Results))
	}

	want := sampleReport("run-1", started).Results
	for i, res := range got.Results {
		if res != want[i] {
			t.Errorf("Results[%d] = %+v, want %+v", i, res, want[i])
		}
	}
}

func TestSQLiteHistory_RecentRunsOrderAndLimit(t *testing.T) {
	h := newTestHistory(t)
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := h.RecordRun(sampleReport(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", id, err)
		}
	}

	runs, err := h.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-3" || runs[1].ID != "run-2" {
		t.Errorf("runs = [%s %s], want [run-3 run-2]", runs[0].ID, runs[1].ID)
	}
}

func TestSQLiteHistory_DuplicateRunID(t *testing.T) {
	h := newTestHistory(t)
	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	if err := h.RecordRun(sampleReport("run-1", started)); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := h.RecordRun(sampleReport("run-1", started)); err == nil {
		t.Error("second RecordRun() with same ID expected error")
	}

	runs, err := h.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 || len(runs[0].Results) != 4 {
		t.Errorf("failed insert left partial data: %d runs", len(runs))
	}
}

func TestSQLiteHistory_CheckMigrations(t *testing.T) {
	h := newTestHistory(t)
	if err := h.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() error = %v", err)
	}
}

func TestNewHistoryFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		h, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		h.Close()
	})

	t.Run("sqlite database", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		h, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		defer h.Close()

		if h.Path() != filepath.Join(dir, HistoryFileName) {
			t.Errorf("Path() = %q, want %q", h.Path(), filepath.Join(dir, HistoryFileName))
		}
	})

	t.Run("sqlite database without data_dir", func(t *testing.T) {
		if _, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("NewHistoryFromConfig() expected error for missing data_dir")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewHistoryFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("NewHistoryFromConfig() expected error for unknown type")
		}
	})
}
