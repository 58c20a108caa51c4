package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

type snapshotKey struct {
	buildID string
	path    string
}

// SnapshotRepoImpl is an in-process SnapshotRepository.
type SnapshotRepoImpl struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]*entity.PageSnapshot
}

var _ repository.SnapshotRepository = (*SnapshotRepoImpl)(nil)

// NewSnapshotRepo creates an empty in-memory snapshot store.
func NewSnapshotRepo() *SnapshotRepoImpl {
	return &SnapshotRepoImpl{snapshots: make(map[snapshotKey]*entity.PageSnapshot)}
}

func (r *SnapshotRepoImpl) Save(_ context.Context, s *entity.PageSnapshot) error {
	cp := *s
	cp.Body = slices.Clone(s.Body)
	cp.Tags = slices.Clone(s.Tags)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshotKey{s.BuildID, s.Path}] = &cp
	return nil
}

func (r *SnapshotRepoImpl) Find(_ context.Context, buildID, path string) (*entity.PageSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snapshots[snapshotKey{buildID, path}]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	cp := *s
	cp.Body = slices.Clone(s.Body)
	cp.Tags = slices.Clone(s.Tags)
	return &cp, nil
}

func (r *SnapshotRepoImpl) DeleteByTag(_ context.Context, buildID, tag string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k, s := range r.snapshots {
		if k.buildID == buildID && slices.Contains(s.Tags, tag) {
			delete(r.snapshots, k)
			removed++
		}
	}
	return removed, nil
}

func (r *SnapshotRepoImpl) Ping(context.Context) error { return nil }
