package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cargoflow/sftp-mirror/internal/config"
	"github.com/cargoflow/sftp-mirror/internal/logging"
	"github.com/cargoflow/sftp-mirror/pkg/mirror"
	"github.com/cargoflow/sftp-mirror/pkg/sftpclient"
	"github.com/cargoflow/sftp-mirror/pkg/snapshot"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

var (
	envFile         string
	daysBack        int
	excludes        []string
	dryRun          bool
	quiet           bool
	summaryJSONFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sftp-mirror",
		Short: "One-way, idempotent SFTP tree mirroring",
		Long: `sftp-mirror copies recently modified files from a source SFTP tree to a
destination SFTP tree. Files already present at the destination with the same
size are skipped; files with a differing size are removed and re-sent. Every
run re-derives its state from fresh listings, so re-running is always safe.`,
		Version: fmt.Sprintf("%s (commit: %s, built at: %s by %s)", version, commit, date, builtBy),
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	rootCmd.Flags().StringVar(&envFile, "env-file", "", "Path to an env file (defaults to ./.env when present)")
	rootCmd.Flags().IntVar(&daysBack, "days-back", 0, "Override the recency window in days (0 = today only)")
	rootCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Exclude patterns (multiple allowed)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show planned transfers without executing")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Log to the run log file only")
	rootCmd.Flags().StringVar(&summaryJSONFile, "summary-json-file", "", "Path to write the run statistics as JSON")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("days-back") {
		cfg.ExactDay = daysBack == 0
		cfg.DaysBack = daysBack
	}
	cfg.Excludes = append(cfg.Excludes, excludes...)

	logPath, logName, err := logging.Setup(cfg.LocalLogDir, quiet)
	if err != nil {
		return err
	}

	hostKey, err := sftpclient.HostKeyPolicy(cfg.DisableHostKeyCheck, cfg.KnownHostsPath)
	if err != nil {
		return err
	}

	source := sftpclient.NewSSHClient(cfg.Source, hostKey)
	dest := sftpclient.NewSSHClient(cfg.Dest, hostKey)

	var filter snapshot.RecencyFilter
	if cfg.ExactDay {
		filter = snapshot.NewExactDay(time.Now())
	} else {
		filter = snapshot.NewWindow(time.Now(), cfg.DaysBack)
	}

	runCfg := mirror.Config{
		SourceRoot:    cfg.SourceRoot,
		DestListRoots: cfg.ListRoots(),
		PublishRoot:   cfg.DestUploadsRoot,
		RemoteLogDir:  cfg.DestLogDir,
		LogLocalPath:  logPath,
		LogName:       logName,
		StagingDir:    cfg.StagingDir,
		RetainDir:     cfg.LocalCopyDir,
		Excludes:      cfg.Excludes,
		Filter:        filter,
		SessionScope:  cfg.SessionScope,
		DryRun:        dryRun,
	}

	st, _, err := mirror.Run(context.Background(), source, dest, afero.NewOsFs(), runCfg)
	if err != nil {
		log.WithError(err).Error("run aborted")
		return err
	}

	if summaryJSONFile != "" {
		if err := writeSummary(summaryJSONFile, st); err != nil {
			return fmt.Errorf("write summary JSON: %w", err)
		}
	}

	return nil
}

func writeSummary(path string, st interface{}) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
