package repository

import (
	"context"
	"errors"

	"github.com/user/character-explorer/internal/entity"
)

// ErrSnapshotNotFound is returned when a build has no snapshot for a path.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository keeps rendered pages per build.
type SnapshotRepository interface {
	// Save stores or replaces the snapshot for (BuildID, Path).
	Save(ctx context.Context, snapshot *entity.PageSnapshot) error
	// Find returns the snapshot for a path in a build, or ErrSnapshotNotFound.
	Find(ctx context.Context, buildID, path string) (*entity.PageSnapshot, error)
	// DeleteByTag removes the build's snapshots carrying tag.
	DeleteByTag(ctx context.Context, buildID, tag string) (int, error)
	// Ping checks the backing store.
	Ping(ctx context.Context) error
}
