// Package store persists studies and their assignments.
//
// Three backends implement the [Store] interface:
//   - memory: in-process maps, for tests and single-instance serving
//   - redis: JSON values in Redis, for multi-instance deployments
//   - mongo: studies and assignments collections in MongoDB
//
// All backends share the same contract: studies are replaced wholesale by
// ID, assignments accumulate per study and are listed in index order, and
// deleting a study also drops its assignments.
package store

import (
	"context"
	"errors"

	"github.com/seqlab/counterseq/pkg/study"
)

// ErrNotFound is returned when a study does not exist.
var ErrNotFound = errors.New("not found")

// Store is the interface for persistence backends.
type Store interface {
	// PutStudy stores or replaces a study.
	PutStudy(ctx context.Context, st *study.Study) error

	// GetStudy retrieves a study by ID. Returns ErrNotFound when absent.
	GetStudy(ctx context.Context, id string) (*study.Study, error)

	// ListStudies returns all studies, newest first.
	ListStudies(ctx context.Context) ([]*study.Study, error)

	// DeleteStudy removes a study and all of its assignments.
	// Returns ErrNotFound when the study does not exist.
	DeleteStudy(ctx context.Context, id string) error

	// PutAssignment stores an assignment.
	PutAssignment(ctx context.Context, a *study.Assignment) error

	// ListAssignments returns a study's assignments in index order.
	ListAssignments(ctx context.Context, studyID string) ([]*study.Assignment, error)

	// CountAssignments returns the number of stored assignments for a
	// study. Servers use it as the next assignment index.
	CountAssignments(ctx context.Context, studyID string) (int, error)

	// Close releases backend resources.
	Close() error
}
