package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordIncrementsExactlyOneCounter(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    RunStats
	}{
		{OutcomeSkipped, RunStats{Unchanged: 1}},
		{OutcomeCreated, RunStats{New: 1}},
		{OutcomeReplaced, RunStats{Replaced: 1}},
		{OutcomeDownloadFailed, RunStats{DownloadErrors: 1}},
		{OutcomeUploadFailed, RunStats{UploadErrors: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			st := RunStats{}
			st.Record(tt.outcome, false)
			assert.Equal(t, tt.want, st)
		})
	}
}

func TestRemovalFailureAddsToFinalOutcome(t *testing.T) {
	st := RunStats{}

	// A replace whose stale removal failed but whose upload succeeded.
	st.Record(OutcomeReplaced, true)
	assert.Equal(t, RunStats{Replaced: 1, RemovalErrors: 1}, st)

	// A replace that lost both the removal and the upload.
	st.Record(OutcomeUploadFailed, true)
	assert.Equal(t, RunStats{Replaced: 1, RemovalErrors: 2, UploadErrors: 1}, st)
}

func TestErrors(t *testing.T) {
	st := RunStats{DownloadErrors: 1, UploadErrors: 2, RemovalErrors: 3, New: 10}
	assert.Equal(t, 6, st.Errors())
}

func TestFieldsMatchCounters(t *testing.T) {
	st := RunStats{New: 1, Unchanged: 2, Replaced: 3, DownloadErrors: 4, UploadErrors: 5, RemovalErrors: 6}

	fields := st.Fields()
	assert.Equal(t, 1, fields["new"])
	assert.Equal(t, 2, fields["unchanged"])
	assert.Equal(t, 3, fields["replaced"])
	assert.Equal(t, 4, fields["download_errors"])
	assert.Equal(t, 5, fields["upload_errors"])
	assert.Equal(t, 6, fields["removal_errors"])
}
