// Package logging configures the run log: logrus writing to stderr and to a
// run-timestamped file that is shipped to the destination when the run ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// Setup directs logrus at a fresh log file under dir, named after the run
// start time, and returns the file's path and base name. With quiet set the
// log goes to the file only.
func Setup(dir string, quiet bool) (path, name string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create log dir: %w", err)
	}

	name = fmt.Sprintf("mirror_run_%s.log", time.Now().Format("20060102_1504"))
	path = filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("open log file: %w", err)
	}

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	if quiet {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(f, os.Stderr))
	}

	return path, name, nil
}
