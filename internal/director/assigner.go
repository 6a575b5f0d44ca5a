package director

import (
	"fmt"

	"github.com/rainycowork/cowork/internal/directory"
	"github.com/rainycowork/cowork/pkg/models"
)

// Assigner maps validated subtasks onto workers from the directory.
type Assigner struct {
	dir    *directory.Directory
	logger *DebugLogger
}

// NewAssigner creates an Assigner over the given directory.
func NewAssigner(dir *directory.Directory, logger *DebugLogger) *Assigner {
	if logger == nil {
		logger = NopLogger()
	}
	return &Assigner{dir: dir, logger: logger}
}

// Assign reserves one idle worker of the matching category for every
// subtask, first-fit in directory order. Reservation is atomic with the
// match. If any subtask cannot be placed, all reservations made so far
// are rolled back and the whole assignment fails; the caller decides
// whether to retry, queue, or abort.
func (a *Assigner) Assign(subtasks []models.SubTask) ([]*models.TaskAssignment, error) {
	assignments := make([]*models.TaskAssignment, 0, len(subtasks))

	for _, st := range subtasks {
		workerID, err := a.dir.Acquire(st.WorkerType, st.ID)
		if err != nil {
			for _, done := range assignments {
				a.dir.Release(done.WorkerID)
			}
			a.logger.Log("[assigner] no worker for subtask %s (%s): %v", st.ID, st.WorkerType, err)
			return nil, fmt.Errorf("assign subtask %s: %w", st.ID, err)
		}

		a.logger.Log("[assigner] subtask %s -> worker %s", st.ID, workerID)

		deps := make([]string, len(st.Dependencies))
		copy(deps, st.Dependencies)

		assignments = append(assignments, &models.TaskAssignment{
			SubTaskID:    st.ID,
			WorkerID:     workerID,
			Status:       models.AssignmentPending,
			Dependencies: deps,
		})
	}

	return assignments, nil
}
