// Package planner computes the per-file action for a mirror run. It is pure:
// identical snapshot pairs always yield identical entry sequences.
package planner

import (
	"sort"

	"github.com/cargoflow/sftp-mirror/pkg/snapshot"
)

type Decision string

const (
	DecisionSkip    Decision = "skip"
	DecisionCreate  Decision = "create"
	DecisionReplace Decision = "replace"
)

// Entry pairs a source file with the decision taken for it.
type Entry struct {
	RelPath  string
	Record   snapshot.FileRecord
	Decision Decision
	Reason   string
}

// Reconcile decides an action for every source file against the merged
// destination snapshot. A file is skipped iff the destination holds the same
// relative path with equal size; absent means create, present with a
// differing size means replace. Modification time never participates in the
// comparison. Entries are sorted by relative path so a run processes files in
// a deterministic order.
func Reconcile(source snapshot.Snapshot, dest snapshot.Snapshot) []Entry {
	entries := make([]Entry, 0, len(source))

	for relPath, rec := range source {
		destRec, exists := dest[relPath]

		switch {
		case !exists:
			entries = append(entries, Entry{
				RelPath:  relPath,
				Record:   rec,
				Decision: DecisionCreate,
				Reason:   "new file",
			})
		case destRec.Size == rec.Size:
			entries = append(entries, Entry{
				RelPath:  relPath,
				Record:   rec,
				Decision: DecisionSkip,
				Reason:   "size matches",
			})
		default:
			entries = append(entries, Entry{
				RelPath:  relPath,
				Record:   rec,
				Decision: DecisionReplace,
				Reason:   "size differs",
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})

	return entries
}
