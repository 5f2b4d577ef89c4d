// Package stats accumulates the per-outcome counters of a single mirror run.
package stats

import (
	log "github.com/sirupsen/logrus"
)

// Outcome is the terminal result of one file's transfer pipeline.
type Outcome string

const (
	OutcomeSkipped        Outcome = "skipped"
	OutcomeCreated        Outcome = "created"
	OutcomeReplaced       Outcome = "replaced"
	OutcomeDownloadFailed Outcome = "download-failed"
	OutcomeUploadFailed   Outcome = "upload-failed"
)

// RunStats holds one run's counters. One instance per execution; never shared
// across runs. Read-only once the run completes.
type RunStats struct {
	New            int `json:"new"`
	Unchanged      int `json:"unchanged"`
	Replaced       int `json:"replaced"`
	DownloadErrors int `json:"download_errors"`
	UploadErrors   int `json:"upload_errors"`
	RemovalErrors  int `json:"removal_errors"`
}

// Record applies one outcome. Every outcome increments exactly one counter;
// a failed removal of a stale destination file additionally increments the
// removal error counter, since the entry still proceeds to its own outcome.
func (s *RunStats) Record(outcome Outcome, removalFailed bool) {
	if removalFailed {
		s.RemovalErrors++
	}

	switch outcome {
	case OutcomeSkipped:
		s.Unchanged++
	case OutcomeCreated:
		s.New++
	case OutcomeReplaced:
		s.Replaced++
	case OutcomeDownloadFailed:
		s.DownloadErrors++
	case OutcomeUploadFailed:
		s.UploadErrors++
	}
}

// Errors reports how many per-file errors the run accumulated.
func (s *RunStats) Errors() int {
	return s.DownloadErrors + s.UploadErrors + s.RemovalErrors
}

// Fields renders the counters for structured logging.
func (s *RunStats) Fields() log.Fields {
	return log.Fields{
		"new":             s.New,
		"unchanged":       s.Unchanged,
		"replaced":        s.Replaced,
		"download_errors": s.DownloadErrors,
		"upload_errors":   s.UploadErrors,
		"removal_errors":  s.RemovalErrors,
	}
}

// LogSummary writes the end-of-run summary, one line per counter.
func (s *RunStats) LogSummary() {
	log.Info("--- Final summary ---")
	log.Infof("New files uploaded: %d", s.New)
	log.Infof("Unchanged files skipped: %d", s.Unchanged)
	log.Infof("Files replaced: %d", s.Replaced)
	log.Infof("Download errors: %d", s.DownloadErrors)
	log.Infof("Upload errors: %d", s.UploadErrors)
	log.Infof("Removal errors: %d", s.RemovalErrors)
}
