// Package plan provides task decomposition and structural validation of
// the resulting subtask graph.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rainycowork/cowork/pkg/models"
)

// ErrInvalidPlan is the sentinel for all plan-structural failures
// (duplicate id, unknown dependency, cycle). Callers use errors.Is to
// distinguish a bad plan from a resourcing problem.
var ErrInvalidPlan = errors.New("invalid plan")

// DuplicateIDError reports a repeated subtask identifier.
type DuplicateIDError struct {
	// ID is the identifier that appears more than once.
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate subtask ID: %s", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrInvalidPlan }

// UnknownDependencyError reports a dependency on an identifier that is
// not part of the decomposition.
type UnknownDependencyError struct {
	// SubTaskID is the subtask carrying the bad reference.
	SubTaskID string
	// DependencyID is the missing identifier.
	DependencyID string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("subtask %s depends on unknown subtask %s", e.SubTaskID, e.DependencyID)
}

func (e *UnknownDependencyError) Unwrap() error { return ErrInvalidPlan }

// CycleError reports a circular dependency, carrying one witness path.
type CycleError struct {
	// Path is the cycle, beginning and ending with the same identifier.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrInvalidPlan }

// Validate checks a decomposition for structural soundness: pairwise
// distinct identifiers, resolvable dependency references, and an acyclic
// dependency relation. It is pure; re-running it on an accepted plan
// always accepts again. The first violation found is returned.
func Validate(subtasks []models.SubTask) error {
	ids := make(map[string]bool, len(subtasks))
	for _, st := range subtasks {
		if ids[st.ID] {
			return &DuplicateIDError{ID: st.ID}
		}
		ids[st.ID] = true
	}

	deps := make(map[string][]string, len(subtasks))
	for _, st := range subtasks {
		for _, dep := range st.Dependencies {
			if !ids[dep] {
				return &UnknownDependencyError{SubTaskID: st.ID, DependencyID: dep}
			}
		}
		deps[st.ID] = st.Dependencies
	}

	return checkCycles(subtasks, deps)
}

// checkCycles runs a depth-first traversal from every subtask. onStack is
// the per-traversal ancestor set, cleared on backtrack so siblings never
// look like a cycle; done marks nodes whose entire subtree is known acyclic
// so traversals from later roots do not repeat work.
func checkCycles(subtasks []models.SubTask, deps map[string][]string) error {
	onStack := make(map[string]bool, len(subtasks))
	done := make(map[string]bool, len(subtasks))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		if done[id] {
			return nil
		}
		if onStack[id] {
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			return &CycleError{Path: append(path[start:], id)}
		}

		onStack[id] = true
		for _, dep := range deps[id] {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		delete(onStack, id)
		done[id] = true
		return nil
	}

	for _, st := range subtasks {
		if err := visit(st.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
