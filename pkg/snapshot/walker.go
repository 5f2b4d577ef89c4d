package snapshot

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"

	"github.com/cargoflow/sftp-mirror/pkg/sftpclient"
)

// Walker enumerates a remote tree into a Snapshot.
type Walker struct {
	sess     sftpclient.Session
	excludes []string
}

// NewWalker returns a walker reading through sess. Exclude patterns use
// doublestar syntax and are matched against relative paths; a pattern ending
// in "/" excludes whole directories.
func NewWalker(sess sftpclient.Session, excludes []string) *Walker {
	return &Walker{
		sess:     sess,
		excludes: excludes,
	}
}

type walkFrame struct {
	remote string
	rel    string
	depth  int
}

// Walk lists the tree rooted at root and returns the files that pass filter
// (nil means include everything). A listing failure on the root itself is an
// error; a failure on any subtree below it is logged and that subtree
// contributes nothing, without aborting the walk. The walk is breadth-first
// over an explicit queue so arbitrarily deep trees cannot exhaust the stack.
func (w *Walker) Walk(root string, filter RecencyFilter) (Snapshot, error) {
	snap := Snapshot{}

	queue := []walkFrame{{remote: root, rel: "", depth: 0}}
	for len(queue) > 0 {
		frame := queue[0]
		queue = queue[1:]

		entries, err := w.sess.ListDir(frame.remote)
		if err != nil {
			if frame.depth == 0 {
				return nil, fmt.Errorf("list root %s: %w", frame.remote, err)
			}
			log.WithError(err).WithField("path", frame.remote).Error("skipping unreadable subtree")
			continue
		}

		for _, entry := range entries {
			rel := entry.Name
			if frame.rel != "" {
				rel = frame.rel + "/" + entry.Name
			}

			if entry.IsDir {
				if frame.depth == 0 && filter != nil && filter.PruneDir(entry.ModTime) {
					log.WithField("path", rel).Info("skipping stale top-level directory")
					continue
				}
				if w.isExcludedDir(rel) {
					continue
				}
				queue = append(queue, walkFrame{
					remote: path.Join(frame.remote, entry.Name),
					rel:    rel,
					depth:  frame.depth + 1,
				})
				continue
			}

			if filter != nil && !filter.IncludeFile(entry.ModTime) {
				continue
			}
			if w.isExcluded(rel) {
				continue
			}

			snap[rel] = FileRecord{
				RelPath: rel,
				Size:    entry.Size,
				ModTime: entry.ModTime,
			}
		}
	}

	return snap, nil
}

func (w *Walker) isExcluded(relPath string) bool {
	for _, pattern := range w.excludes {
		if strings.HasSuffix(pattern, "/") {
			continue
		}
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (w *Walker) isExcludedDir(relPath string) bool {
	for _, pattern := range w.excludes {
		if !strings.HasSuffix(pattern, "/") {
			continue
		}
		if matched, _ := doublestar.Match(strings.TrimSuffix(pattern, "/"), relPath); matched {
			return true
		}
	}
	return false
}
