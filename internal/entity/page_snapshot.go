package entity

import "time"

// PageSnapshot is a rendered page kept for a build. It mirrors the
// `page_snapshots` PostgreSQL table schema.
type PageSnapshot struct {
	BuildID     string
	Path        string
	Body        []byte
	StatusCode  int
	Tags        []string
	GeneratedAt time.Time
	Revalidate  time.Duration // zero for statically generated pages
}

// Fresh reports whether the snapshot can be served without regenerating.
func (s *PageSnapshot) Fresh(now time.Time) bool {
	return s.Revalidate <= 0 || now.Sub(s.GeneratedAt) < s.Revalidate
}
