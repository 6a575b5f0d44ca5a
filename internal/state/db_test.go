package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "state.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("expected parent directory to exist: %v", err)
	}
	if db.Path() != path {
		t.Errorf("expected path %s, got %s", path, db.Path())
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	// Running migrations again must not error or re-apply anything.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var version int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}
}

func TestProjectDBPath(t *testing.T) {
	got := ProjectDBPath("/tmp/project")
	want := filepath.Join("/tmp/project", ".cowork", "state.db")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestPurgeOldRuns(t *testing.T) {
	db := openTestDB(t)

	old := &Run{
		ID:          "run-old",
		TaskID:      "task-1",
		Description: "ancient history",
		Status:      RunCompleted,
		StartedAt:   time.Now().Add(-48 * time.Hour),
	}
	recent := &Run{
		ID:          "run-new",
		TaskID:      "task-2",
		Description: "fresh",
		Status:      RunCompleted,
		StartedAt:   time.Now(),
	}
	for _, r := range []*Run{old, recent} {
		if err := db.CreateRun(r); err != nil {
			t.Fatalf("create run: %v", err)
		}
	}
	if err := db.CreateRunSubTask(&RunSubTask{
		RunID: "run-old", SubTaskID: "subtask-1",
		Description: "x", WorkerType: "researcher", Status: "completed",
	}); err != nil {
		t.Fatalf("create subtask: %v", err)
	}

	count, err := db.PurgeOldRuns(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 run purged, got %d", count)
	}

	if r, _ := db.GetRun("run-old"); r != nil {
		t.Error("expected old run to be gone")
	}
	if r, _ := db.GetRun("run-new"); r == nil {
		t.Error("expected recent run to survive")
	}
	subtasks, err := db.ListRunSubTasks("run-old")
	if err != nil {
		t.Fatalf("list subtasks: %v", err)
	}
	if len(subtasks) != 0 {
		t.Errorf("expected subtask rows purged with their run, got %d", len(subtasks))
	}
}
