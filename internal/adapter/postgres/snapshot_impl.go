package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/character-explorer/internal/entity"
	"github.com/user/character-explorer/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS page_snapshots (
		build_id           TEXT        NOT NULL,
		path               TEXT        NOT NULL,
		body               BYTEA       NOT NULL,
		status_code        INTEGER     NOT NULL,
		tags               TEXT[]      NOT NULL DEFAULT '{}',
		generated_at       TIMESTAMPTZ NOT NULL,
		revalidate_seconds BIGINT      NOT NULL DEFAULT 0,
		PRIMARY KEY (build_id, path)
	);
	CREATE INDEX IF NOT EXISTS page_snapshots_tags_idx ON page_snapshots USING GIN (tags);
`

// SnapshotRepoImpl provides a concrete implementation for the SnapshotRepository interface using PostgreSQL.
type SnapshotRepoImpl struct {
	db *pgxpool.Pool
}

var _ repository.SnapshotRepository = (*SnapshotRepoImpl)(nil)

// NewSnapshotRepo creates a new instance of SnapshotRepoImpl.
func NewSnapshotRepo(db *pgxpool.Pool) *SnapshotRepoImpl {
	return &SnapshotRepoImpl{db: db}
}

// EnsureSchema creates the page_snapshots table when it does not exist.
func (r *SnapshotRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create page_snapshots schema: %w", err)
	}
	return nil
}

// Save stores or replaces the snapshot for a build and path.
func (r *SnapshotRepoImpl) Save(ctx context.Context, s *entity.PageSnapshot) error {
	query := `
		INSERT INTO page_snapshots (build_id, path, body, status_code, tags, generated_at, revalidate_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (build_id, path) DO UPDATE SET
			body = EXCLUDED.body,
			status_code = EXCLUDED.status_code,
			tags = EXCLUDED.tags,
			generated_at = EXCLUDED.generated_at,
			revalidate_seconds = EXCLUDED.revalidate_seconds;
	`
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		s.BuildID,
		s.Path,
		s.Body,
		s.StatusCode,
		tags,
		s.GeneratedAt,
		int64(s.Revalidate/time.Second),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s%s: %w", s.BuildID, s.Path, err)
	}
	return nil
}

// Find retrieves the snapshot for a path in a build.
func (r *SnapshotRepoImpl) Find(ctx context.Context, buildID, path string) (*entity.PageSnapshot, error) {
	query := `
		SELECT build_id, path, body, status_code, tags, generated_at, revalidate_seconds
		FROM page_snapshots
		WHERE build_id = $1 AND path = $2;
	`
	var s entity.PageSnapshot
	var revalidateSeconds int64
	err := r.db.QueryRow(ctx, query, buildID, path).Scan(
		&s.BuildID,
		&s.Path,
		&s.Body,
		&s.StatusCode,
		&s.Tags,
		&s.GeneratedAt,
		&revalidateSeconds,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("find snapshot %s%s: %w", buildID, path, err)
	}
	s.Revalidate = time.Duration(revalidateSeconds) * time.Second
	return &s, nil
}

// DeleteByTag removes the build's snapshots whose tags contain tag.
func (r *SnapshotRepoImpl) DeleteByTag(ctx context.Context, buildID, tag string) (int, error) {
	query := `DELETE FROM page_snapshots WHERE build_id = $1 AND $2 = ANY(tags);`
	result, err := r.db.Exec(ctx, query, buildID, tag)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots tagged %s: %w", tag, err)
	}
	return int(result.RowsAffected()), nil
}

func (r *SnapshotRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
