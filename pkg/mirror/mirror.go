// Package mirror wires one run end to end: snapshot the destination roots,
// snapshot the source inside the recency window, reconcile, execute the
// transfers, and ship the run log.
package mirror

import (
	"context"
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/cargoflow/sftp-mirror/pkg/executor"
	"github.com/cargoflow/sftp-mirror/pkg/planner"
	"github.com/cargoflow/sftp-mirror/pkg/sftpclient"
	"github.com/cargoflow/sftp-mirror/pkg/snapshot"
	"github.com/cargoflow/sftp-mirror/pkg/stats"
)

// Config carries the already-validated settings of one run.
type Config struct {
	// SourceRoot is the remote tree mirrored from.
	SourceRoot string

	// DestListRoots are the destination trees merged for comparison, in merge
	// order: when two roots report the same relative path, the later root
	// wins.
	DestListRoots []string

	// PublishRoot is the single destination tree uploads target.
	PublishRoot string

	// RemoteLogDir receives the run log on the destination endpoint. Empty
	// disables log shipping.
	RemoteLogDir string

	// LogLocalPath / LogName locate the local run log and name its remote
	// copy.
	LogLocalPath string
	LogName      string

	StagingDir string
	RetainDir  string
	Excludes   []string

	// Filter restricts the source snapshot; nil includes every file.
	Filter snapshot.RecencyFilter

	SessionScope sftpclient.SessionScope

	// DryRun logs the planned action per entry without transferring anything.
	DryRun bool
}

// Run executes one mirror pass. Only failures during the two top-level
// snapshot phases are returned as errors; every per-file failure is absorbed
// into the statistics.
func Run(ctx context.Context, source, dest sftpclient.Client, fs afero.Fs, cfg Config) (*stats.RunStats, []executor.Result, error) {
	st := &stats.RunStats{}

	destSnap, err := snapshotDestination(dest, cfg)
	if err != nil {
		return st, nil, err
	}
	log.WithField("files", len(destSnap)).Info("destination snapshot complete")

	log.Info("connecting to source endpoint")
	srcSess, err := source.OpenSession()
	if err != nil {
		return st, nil, fmt.Errorf("open source session: %w", err)
	}
	defer srcSess.Close()

	srcSnap, err := snapshot.NewWalker(srcSess, cfg.Excludes).Walk(cfg.SourceRoot, cfg.Filter)
	if err != nil {
		return st, nil, fmt.Errorf("snapshot source: %w", err)
	}
	log.WithField("files", len(srcSnap)).Info("source snapshot complete")

	entries := planner.Reconcile(srcSnap, destSnap)

	if cfg.DryRun {
		logPlan(entries)
		return st, nil, nil
	}

	destSource := sftpclient.NewSessionSource(dest, cfg.SessionScope)
	defer destSource.Close()

	exec := executor.New(srcSess, destSource, fs, executor.Options{
		SourceRoot:  cfg.SourceRoot,
		PublishRoot: cfg.PublishRoot,
		StagingDir:  cfg.StagingDir,
		RetainDir:   cfg.RetainDir,
	})
	results := exec.Execute(ctx, entries, st)

	st.LogSummary()

	if cfg.RemoteLogDir != "" && cfg.LogLocalPath != "" {
		if err := shipLog(dest, fs, cfg); err != nil {
			log.WithError(err).Error("failed to ship run log to destination")
		} else {
			log.WithField("dir", cfg.RemoteLogDir).Info("run log shipped to destination")
		}
	}

	return st, results, nil
}

// snapshotDestination walks every destination listing root over one session
// and merges the results, later roots winning.
func snapshotDestination(dest sftpclient.Client, cfg Config) (snapshot.Snapshot, error) {
	log.Info("connecting to destination endpoint to list existing files")
	sess, err := dest.OpenSession()
	if err != nil {
		return nil, fmt.Errorf("open destination session: %w", err)
	}
	defer sess.Close()

	walker := snapshot.NewWalker(sess, cfg.Excludes)

	snaps := make([]snapshot.Snapshot, 0, len(cfg.DestListRoots))
	for _, root := range cfg.DestListRoots {
		snap, err := walker.Walk(root, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot destination root %s: %w", root, err)
		}
		snaps = append(snaps, snap)
	}

	return snapshot.Merge(snaps...), nil
}

func logPlan(entries []planner.Entry) {
	for _, entry := range entries {
		if entry.Decision == planner.DecisionSkip {
			continue
		}
		log.WithFields(log.Fields{
			"path":   entry.RelPath,
			"action": string(entry.Decision),
			"reason": entry.Reason,
		}).Info("(dry run) planned transfer")
	}
}

// shipLog uploads the local run log into the destination log directory under
// the run-timestamped name. A failure here never changes the transfer
// statistics.
func shipLog(dest sftpclient.Client, fs afero.Fs, cfg Config) error {
	sess, err := dest.OpenSession()
	if err != nil {
		return fmt.Errorf("open log session: %w", err)
	}
	defer sess.Close()

	if err := executor.EnsureRemoteDirs(sess, cfg.RemoteLogDir); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := fs.Open(cfg.LogLocalPath)
	if err != nil {
		return fmt.Errorf("open local log: %w", err)
	}
	defer f.Close()

	return sess.Upload(f, path.Join(cfg.RemoteLogDir, cfg.LogName))
}
