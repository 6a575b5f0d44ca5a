package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RunStatus represents the status of an orchestration run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded orchestration of a task: decomposition, parallel
// execution, and aggregation.
type Run struct {
	ID           string     `json:"id"`
	TaskID       string     `json:"task_id"`
	Description  string     `json:"description"`
	Status       RunStatus  `json:"status"`
	SubTaskCount int        `json:"subtask_count"`
	FailedCount  int        `json:"failed_count"`
	Output       string     `json:"output"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// RunSubTask is the persisted record of one subtask within a run.
type RunSubTask struct {
	RunID       string   `json:"run_id"`
	SubTaskID   string   `json:"subtask_id"`
	Description string   `json:"description"`
	WorkerType  string   `json:"worker_type"`
	WorkerID    string   `json:"worker_id"`
	Priority    string   `json:"priority"`
	DependsOn   []string `json:"depends_on"`
	Status      string   `json:"status"`
	Output      string   `json:"output"`
	Error       string   `json:"error"`
}

// Run CRUD operations

// CreateRun records a new run.
func (db *DB) CreateRun(r *Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (id, task_id, description, status, subtask_count, failed_count, output, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.TaskID, r.Description, string(r.Status), r.SubTaskCount, r.FailedCount, r.Output, formatTime(r.StartedAt), nil)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, task_id, description, status, subtask_count, failed_count, output, started_at, completed_at
		FROM runs WHERE id = ?
	`, id)

	var r Run
	var output sql.NullString
	var startedAt string
	var completedAt sql.NullString
	err := row.Scan(&r.ID, &r.TaskID, &r.Description, &r.Status, &r.SubTaskCount, &r.FailedCount, &output, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if output.Valid {
		r.Output = output.String
	}
	r.StartedAt, _ = parseTime(startedAt)
	r.CompletedAt = parseNullableTime(completedAt)
	return &r, nil
}

// UpdateRun updates a run.
func (db *DB) UpdateRun(r *Run) error {
	var completedAt *string
	if r.CompletedAt != nil {
		s := formatTime(*r.CompletedAt)
		completedAt = &s
	}

	_, err := db.Exec(`
		UPDATE runs SET task_id = ?, description = ?, status = ?, subtask_count = ?,
			failed_count = ?, output = ?, completed_at = ?
		WHERE id = ?
	`, r.TaskID, r.Description, string(r.Status), r.SubTaskCount, r.FailedCount, r.Output, completedAt, r.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// DeleteRun deletes a run and its subtask rows.
func (db *DB) DeleteRun(id string) error {
	if _, err := db.Exec("DELETE FROM run_subtasks WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("delete run subtasks: %w", err)
	}
	if _, err := db.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// ListRuns lists all runs, optionally filtered by status, most recent first.
func (db *DB) ListRuns(status *RunStatus) ([]Run, error) {
	var rows *sql.Rows
	var err error

	if status != nil {
		rows, err = db.Query(`
			SELECT id, task_id, description, status, subtask_count, failed_count, output, started_at, completed_at
			FROM runs WHERE status = ? ORDER BY started_at DESC
		`, string(*status))
	} else {
		rows, err = db.Query(`
			SELECT id, task_id, description, status, subtask_count, failed_count, output, started_at, completed_at
			FROM runs ORDER BY started_at DESC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var output sql.NullString
		var startedAt string
		var completedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Description, &r.Status, &r.SubTaskCount, &r.FailedCount, &output, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if output.Valid {
			r.Output = output.String
		}
		r.StartedAt, _ = parseTime(startedAt)
		r.CompletedAt = parseNullableTime(completedAt)
		runs = append(runs, r)
	}
	return runs, nil
}

// FinishRun marks a run terminal with its final output.
func (db *DB) FinishRun(id string, status RunStatus, output string, failedCount int) error {
	now := formatTime(time.Now())
	_, err := db.Exec(`
		UPDATE runs SET status = ?, output = ?, failed_count = ?, completed_at = ?
		WHERE id = ?
	`, string(status), output, failedCount, now, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SubTask record operations

// CreateRunSubTask records one subtask of a run.
func (db *DB) CreateRunSubTask(st *RunSubTask) error {
	dependsOn, _ := json.Marshal(st.DependsOn)

	_, err := db.Exec(`
		INSERT INTO run_subtasks (run_id, subtask_id, description, worker_type, worker_id, priority, depends_on, status, output, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.RunID, st.SubTaskID, st.Description, st.WorkerType, st.WorkerID, st.Priority, string(dependsOn), st.Status, st.Output, st.Error)
	if err != nil {
		return fmt.Errorf("create run subtask: %w", err)
	}
	return nil
}

// UpdateRunSubTask updates a subtask record.
func (db *DB) UpdateRunSubTask(st *RunSubTask) error {
	_, err := db.Exec(`
		UPDATE run_subtasks SET worker_id = ?, status = ?, output = ?, error = ?
		WHERE run_id = ? AND subtask_id = ?
	`, st.WorkerID, st.Status, st.Output, st.Error, st.RunID, st.SubTaskID)
	if err != nil {
		return fmt.Errorf("update run subtask: %w", err)
	}
	return nil
}

// ListRunSubTasks lists the subtask records of a run, ordered by subtask ID.
func (db *DB) ListRunSubTasks(runID string) ([]RunSubTask, error) {
	rows, err := db.Query(`
		SELECT run_id, subtask_id, description, worker_type, worker_id, priority, depends_on, status, output, error
		FROM run_subtasks WHERE run_id = ? ORDER BY subtask_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []RunSubTask
	for rows.Next() {
		var st RunSubTask
		var workerID, dependsOn, output, errMsg sql.NullString
		if err := rows.Scan(&st.RunID, &st.SubTaskID, &st.Description, &st.WorkerType, &workerID, &st.Priority, &dependsOn, &st.Status, &output, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run subtask: %w", err)
		}
		if workerID.Valid {
			st.WorkerID = workerID.String
		}
		if dependsOn.Valid {
			json.Unmarshal([]byte(dependsOn.String), &st.DependsOn)
		}
		if output.Valid {
			st.Output = output.String
		}
		if errMsg.Valid {
			st.Error = errMsg.String
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, nil
}
