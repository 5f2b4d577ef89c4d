// Package executor drives the download-then-upload pipeline for each
// reconciled entry. Entries are processed strictly sequentially; every
// per-entry failure is isolated, counted, and the run moves on.
package executor

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/cargoflow/sftp-mirror/pkg/planner"
	"github.com/cargoflow/sftp-mirror/pkg/sftpclient"
	"github.com/cargoflow/sftp-mirror/pkg/stats"
)

// Options configures one run of the executor.
type Options struct {
	// SourceRoot is the remote tree the relative paths were captured from.
	SourceRoot string

	// PublishRoot is the destination tree uploads target.
	PublishRoot string

	// StagingDir is the local scratch tree files pass through between the
	// download and upload legs. Shared and unsynchronized; overlapping runs
	// against the same staging dir are not supported.
	StagingDir string

	// RetainDir, when set, receives an extra local copy of every staged file.
	RetainDir string
}

// Result is the terminal state of one entry's pipeline.
type Result struct {
	Entry         planner.Entry
	Outcome       stats.Outcome
	RemovalFailed bool
	Err           error
}

type Executor struct {
	source sftpclient.Session
	dest   sftpclient.SessionSource
	fs     afero.Fs
	opts   Options
}

// New returns an executor downloading through the long-lived source session
// and publishing through dest, which scopes the sessions used for mutating
// destination operations.
func New(source sftpclient.Session, dest sftpclient.SessionSource, fs afero.Fs, opts Options) *Executor {
	return &Executor{
		source: source,
		dest:   dest,
		fs:     fs,
		opts:   opts,
	}
}

// Execute runs the pipeline for every entry in order, recording each outcome
// into st. No entry's failure terminates the loop; only context cancellation
// between entries stops it early.
func (e *Executor) Execute(ctx context.Context, entries []planner.Entry, st *stats.RunStats) []Result {
	results := make([]Result, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("run cancelled, stopping before remaining entries")
			break
		}

		res := e.transfer(entry)
		st.Record(res.Outcome, res.RemovalFailed)
		results = append(results, res)
	}

	return results
}

// transfer walks one entry through the state machine:
// [RemovingStale] -> Staging -> Publishing -> Done | Failed.
func (e *Executor) transfer(entry planner.Entry) Result {
	res := Result{Entry: entry}

	if entry.Decision == planner.DecisionSkip {
		log.WithField("path", entry.RelPath).Info("unchanged, skipping")
		res.Outcome = stats.OutcomeSkipped
		return res
	}

	destPath := path.Join(e.opts.PublishRoot, entry.RelPath)

	// A stale destination file that cannot be removed is counted but does not
	// stop the entry; the upload below still overwrites at least once.
	if entry.Decision == planner.DecisionReplace {
		log.WithField("path", entry.RelPath).Info("size differs, removing stale destination file")
		if err := e.removeStale(destPath); err != nil {
			log.WithError(err).WithField("path", destPath).Error("failed to remove stale destination file")
			res.RemovalFailed = true
		}
	}

	localPath, err := e.stage(entry)
	if err != nil {
		log.WithError(err).WithField("path", entry.RelPath).Error("download failed")
		res.Outcome = stats.OutcomeDownloadFailed
		res.Err = err
		return res
	}

	if e.opts.RetainDir != "" {
		if err := e.retainCopy(entry.RelPath, localPath); err != nil {
			log.WithError(err).WithField("path", entry.RelPath).Warn("failed to keep extra local copy")
		}
	}

	if err := e.publish(localPath, destPath); err != nil {
		log.WithError(err).WithField("path", entry.RelPath).Error("upload failed")
		res.Outcome = stats.OutcomeUploadFailed
		res.Err = err
		return res
	}

	log.WithField("path", destPath).Info("uploaded")
	if entry.Decision == planner.DecisionReplace {
		res.Outcome = stats.OutcomeReplaced
	} else {
		res.Outcome = stats.OutcomeCreated
	}
	return res
}

func (e *Executor) removeStale(destPath string) error {
	sess, err := e.dest.Acquire()
	if err != nil {
		return fmt.Errorf("open removal session: %w", err)
	}
	defer e.dest.Release(sess)

	exists, err := sess.Exists(destPath)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return sess.Remove(destPath)
}

// stage downloads the source file into the scratch tree, creating local
// intermediate directories as needed, and returns the staged path.
func (e *Executor) stage(entry planner.Entry) (string, error) {
	localPath := filepath.Join(e.opts.StagingDir, filepath.FromSlash(entry.RelPath))

	if err := e.fs.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	f, err := e.fs.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	remotePath := path.Join(e.opts.SourceRoot, entry.RelPath)
	if err := e.source.Download(remotePath, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close staging file: %w", err)
	}

	return localPath, nil
}

func (e *Executor) retainCopy(relPath, localPath string) error {
	copyPath := filepath.Join(e.opts.RetainDir, filepath.FromSlash(relPath))
	if err := e.fs.MkdirAll(filepath.Dir(copyPath), 0o755); err != nil {
		return err
	}

	src, err := e.fs.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	return afero.WriteReader(e.fs, copyPath, src)
}

func (e *Executor) publish(localPath, destPath string) error {
	sess, err := e.dest.Acquire()
	if err != nil {
		return fmt.Errorf("open publish session: %w", err)
	}
	defer e.dest.Release(sess)

	if err := EnsureRemoteDirs(sess, path.Dir(destPath)); err != nil {
		return fmt.Errorf("create destination dirs: %w", err)
	}

	f, err := e.fs.Open(localPath)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	return sess.Upload(f, destPath)
}

// EnsureRemoteDirs creates every missing segment of dir left to right.
// Idempotent: segments that already exist are left alone. Not safe against a
// concurrent run racing the same create-if-absent checks.
func EnsureRemoteDirs(sess sftpclient.Session, dir string) error {
	dir = path.Clean(dir)
	if dir == "." || dir == "/" {
		return nil
	}

	exists, err := sess.Exists(dir)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	prefix := ""
	if strings.HasPrefix(dir, "/") {
		prefix = "/"
	}

	current := ""
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if current == "" {
			current = prefix + segment
		} else {
			current = current + "/" + segment
		}

		exists, err := sess.Exists(current)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := sess.MakeDir(current); err != nil {
			return err
		}
	}

	return nil
}
