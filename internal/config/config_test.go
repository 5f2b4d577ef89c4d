package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargoflow/sftp-mirror/pkg/sftpclient"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SOURCE_SFTP_HOST", "src.example.com")
	t.Setenv("SOURCE_SFTP_USER", "reader")
	t.Setenv("SOURCE_SFTP_PASS", "secret1")
	t.Setenv("SOURCE_REMOTE_DIR", "/outgoing")
	t.Setenv("DEST_SFTP_HOST", "dst.example.com")
	t.Setenv("DEST_SFTP_USER", "writer")
	t.Setenv("DEST_SFTP_PASS", "secret2")
	t.Setenv("DEST_REMOTE_UPLOADS_DIR", "/uploads")
	t.Setenv("SFTP_DISABLE_HOSTKEY_CHECK", "true")

	// Make sure ambient values never leak into assertions below.
	for _, name := range []string{
		"SOURCE_SFTP_PORT", "DEST_SFTP_PORT", "DAYS_BACK", "DEST_REMOTE_EXTRA_DIRS",
		"DEST_REMOTE_LOG_DIR", "SFTP_KNOWN_HOSTS", "STAGING_DIR", "LOCAL_LOG_DIR",
		"KEEP_EXTRA_LOCAL_COPY", "LOCAL_COPY_DIR", "EXCLUDE_PATTERNS", "SESSION_SCOPE",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, sftpclient.Endpoint{Host: "src.example.com", Port: 22, Username: "reader", Password: "secret1"}, cfg.Source)
	assert.Equal(t, "/outgoing", cfg.SourceRoot)
	assert.Equal(t, "/uploads", cfg.DestUploadsRoot)
	assert.True(t, cfg.ExactDay, "DAYS_BACK unset must select the exact-day variant")
	assert.Equal(t, "staging", cfg.StagingDir)
	assert.Equal(t, "logs", cfg.LocalLogDir)
	assert.False(t, cfg.KeepExtraLocalCopy)
	assert.Empty(t, cfg.LocalCopyDir)
	assert.Equal(t, sftpclient.ScopePerOperation, cfg.SessionScope)
	assert.Equal(t, []string{"/uploads"}, cfg.ListRoots())
}

func TestLoadWindowAndExtras(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYS_BACK", "2")
	t.Setenv("DEST_REMOTE_EXTRA_DIRS", "/processed, /archive")
	t.Setenv("EXCLUDE_PATTERNS", "*.tmp,logs/")
	t.Setenv("KEEP_EXTRA_LOCAL_COPY", "yes")
	t.Setenv("SESSION_SCOPE", "shared")
	t.Setenv("SOURCE_SFTP_PORT", "2222")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.ExactDay)
	assert.Equal(t, 2, cfg.DaysBack)
	assert.Equal(t, 2222, cfg.Source.Port)
	assert.Equal(t, []string{"/uploads", "/processed", "/archive"}, cfg.ListRoots())
	assert.Equal(t, []string{"*.tmp", "logs/"}, cfg.Excludes)
	assert.True(t, cfg.KeepExtraLocalCopy)
	assert.Equal(t, "retained", cfg.LocalCopyDir)
	assert.Equal(t, sftpclient.ScopeShared, cfg.SessionScope)
}

func TestLoadReportsAllMissingVariables(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOURCE_SFTP_HOST", "")
	t.Setenv("DEST_SFTP_PASS", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_SFTP_HOST")
	assert.Contains(t, err.Error(), "DEST_SFTP_PASS")
}

func TestLoadRejectsBadInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYS_BACK", "two")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAYS_BACK")
}

func TestLoadRejectsNegativeWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYS_BACK", "-1")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRequiresKnownHostsUnlessDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SFTP_DISABLE_HOSTKEY_CHECK", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SFTP_KNOWN_HOSTS")

	t.Setenv("SFTP_KNOWN_HOSTS", "/etc/ssh/known_hosts")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/ssh/known_hosts", cfg.KnownHostsPath)
	assert.False(t, cfg.DisableHostKeyCheck)
}

func TestLoadRejectsUnknownSessionScope(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SCOPE", "pooled")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SCOPE")
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load("/nonexistent/.env")
	require.Error(t, err)
}
