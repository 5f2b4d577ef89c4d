package snapshot

import "time"

// RecencyFilter restricts a walk to recently modified files. PruneDir is
// consulted for directories at the top recursion level only; a directory's
// mtime does not bound its descendants' mtimes, so pruning deeper would be
// unsound.
type RecencyFilter interface {
	IncludeFile(modTime time.Time) bool
	PruneDir(modTime time.Time) bool
}

// ExactDay includes only files modified on the given calendar day.
type ExactDay struct {
	day time.Time
}

func NewExactDay(day time.Time) ExactDay {
	return ExactDay{day: day}
}

func (f ExactDay) IncludeFile(modTime time.Time) bool {
	return sameDay(modTime, f.day)
}

func (f ExactDay) PruneDir(time.Time) bool {
	return false
}

// Window includes files modified on or after a cutoff day. Top-level
// directories older than the cutoff may be skipped without descending; that
// is a volume optimization, not a correctness guarantee.
type Window struct {
	cutoff time.Time
}

// NewWindow builds a window covering today and the previous daysBack days.
func NewWindow(today time.Time, daysBack int) Window {
	return Window{cutoff: dayOf(today).AddDate(0, 0, -daysBack)}
}

func (f Window) IncludeFile(modTime time.Time) bool {
	return !dayOf(modTime).Before(f.cutoff)
}

func (f Window) PruneDir(modTime time.Time) bool {
	return dayOf(modTime).Before(f.cutoff)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
