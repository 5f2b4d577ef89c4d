// Package config resolves the run configuration from the environment, with
// optional .env file support. Values are validated here so the rest of the
// program consumes them as-is.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cargoflow/sftp-mirror/pkg/sftpclient"
)

const (
	defaultPort       = 22
	defaultStagingDir = "staging"
	defaultLogDir     = "logs"
	defaultCopyDir    = "retained"
)

type Config struct {
	Source     sftpclient.Endpoint
	SourceRoot string

	Dest            sftpclient.Endpoint
	DestUploadsRoot string
	// DestExtraRoots are additional destination trees (e.g. a processed
	// archive) merged into the comparison set. They are never published to.
	DestExtraRoots []string
	DestLogDir     string

	// ExactDay restricts the source snapshot to files modified today;
	// otherwise DaysBack defines the recency window.
	ExactDay bool
	DaysBack int

	DisableHostKeyCheck bool
	KnownHostsPath      string

	StagingDir  string
	LocalLogDir string

	KeepExtraLocalCopy bool
	LocalCopyDir       string

	Excludes []string

	SessionScope sftpclient.SessionScope
}

// Load reads envFile (when set, it must exist; the default ".env" may be
// absent) into the environment without overriding already-set variables, then
// resolves and validates the configuration.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var missing []string
	required := func(name string) string {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	cfg := &Config{
		Source: sftpclient.Endpoint{
			Host:     required("SOURCE_SFTP_HOST"),
			Username: required("SOURCE_SFTP_USER"),
			Password: required("SOURCE_SFTP_PASS"),
		},
		SourceRoot: required("SOURCE_REMOTE_DIR"),
		Dest: sftpclient.Endpoint{
			Host:     required("DEST_SFTP_HOST"),
			Username: required("DEST_SFTP_USER"),
			Password: required("DEST_SFTP_PASS"),
		},
		DestUploadsRoot: required("DEST_REMOTE_UPLOADS_DIR"),
		DestLogDir:      strings.TrimSpace(os.Getenv("DEST_REMOTE_LOG_DIR")),
		KnownHostsPath:  strings.TrimSpace(os.Getenv("SFTP_KNOWN_HOSTS")),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Source.Port, err = intEnv("SOURCE_SFTP_PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.Dest.Port, err = intEnv("DEST_SFTP_PORT", defaultPort); err != nil {
		return nil, err
	}

	// DAYS_BACK unset selects the exact-day variant.
	if raw := strings.TrimSpace(os.Getenv("DAYS_BACK")); raw == "" {
		cfg.ExactDay = true
	} else {
		if cfg.DaysBack, err = intEnv("DAYS_BACK", 0); err != nil {
			return nil, err
		}
		if cfg.DaysBack < 0 {
			return nil, fmt.Errorf("DAYS_BACK must not be negative, got %d", cfg.DaysBack)
		}
	}

	cfg.DestExtraRoots = listEnv("DEST_REMOTE_EXTRA_DIRS")
	cfg.Excludes = listEnv("EXCLUDE_PATTERNS")

	cfg.DisableHostKeyCheck = boolEnv("SFTP_DISABLE_HOSTKEY_CHECK")
	if !cfg.DisableHostKeyCheck && cfg.KnownHostsPath == "" {
		return nil, fmt.Errorf("SFTP_KNOWN_HOSTS is required unless SFTP_DISABLE_HOSTKEY_CHECK is set")
	}

	cfg.StagingDir = stringEnv("STAGING_DIR", defaultStagingDir)
	cfg.LocalLogDir = stringEnv("LOCAL_LOG_DIR", defaultLogDir)

	cfg.KeepExtraLocalCopy = boolEnv("KEEP_EXTRA_LOCAL_COPY")
	if cfg.KeepExtraLocalCopy {
		cfg.LocalCopyDir = stringEnv("LOCAL_COPY_DIR", defaultCopyDir)
	}

	switch scope := sftpclient.SessionScope(stringEnv("SESSION_SCOPE", string(sftpclient.ScopePerOperation))); scope {
	case sftpclient.ScopePerOperation, sftpclient.ScopeShared:
		cfg.SessionScope = scope
	default:
		return nil, fmt.Errorf("SESSION_SCOPE must be %q or %q, got %q",
			sftpclient.ScopePerOperation, sftpclient.ScopeShared, scope)
	}

	return cfg, nil
}

// ListRoots returns the destination roots merged for comparison, in merge
// order: the uploads root first, extra roots after it, so an entry present in
// an extra root (e.g. already processed) takes precedence.
func (c *Config) ListRoots() []string {
	return append([]string{c.DestUploadsRoot}, c.DestExtraRoots...)
}

func stringEnv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func intEnv(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func boolEnv(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func listEnv(name string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
