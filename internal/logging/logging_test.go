package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCreatesRunLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	path, name, err := Setup(dir, true)
	require.NoError(t, err)
	defer log.SetOutput(os.Stderr)

	assert.Equal(t, filepath.Join(dir, name), path)
	assert.Regexp(t, `^mirror_run_\d{8}_\d{4}\.log$`, name)

	log.Info("probe line")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "probe line")
}
