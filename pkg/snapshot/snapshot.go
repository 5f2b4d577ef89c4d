// Package snapshot builds point-in-time indexes of remote SFTP trees. A
// snapshot maps forward-slash relative paths (no leading slash) to file
// metadata and is rebuilt from a fresh listing on every run.
package snapshot

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// FileRecord is the captured metadata of one remote file. Immutable once
// produced by a walk.
type FileRecord struct {
	RelPath string
	Size    int64
	ModTime time.Time
}

// Snapshot maps relative path to FileRecord.
type Snapshot map[string]FileRecord

// Merge unions snapshots into one. When the same relative path appears in
// more than one input, the later-merged snapshot wins. The inputs are not
// modified.
func Merge(snaps ...Snapshot) Snapshot {
	merged := Snapshot{}
	for _, snap := range snaps {
		for relPath, rec := range snap {
			if _, ok := merged[relPath]; ok {
				log.WithField("path", relPath).Debug("merge: later snapshot overrides earlier entry")
			}
			merged[relPath] = rec
		}
	}
	return merged
}
