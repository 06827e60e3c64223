package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const backupJobName = "theme_backup"

// backupTimestampLayout sorts lexically and is safe in file names on every platform.
const backupTimestampLayout = "20060102T150405Z"

// Snapshotter produces the JSON document written to each backup file.
type Snapshotter interface {
	Snapshot() ([]byte, error)
}

// BackupJob writes the saved theme list to a timestamped file.
type BackupJob struct {
	Source Snapshotter
	Dir    string
	Now    func() time.Time
}

// Run writes one backup and returns its path.
func (j BackupJob) Run(ctx context.Context) (string, error) {
	if j.Source == nil {
		return "", fmt.Errorf("backup source is required")
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	data, err := j.Source.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshot themes: %w", err)
	}
	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("themes-%s.json", now().UTC().Format(backupTimestampLayout))
	path := filepath.Join(j.Dir, name)

	// Write to a temp file first so a crash never leaves a truncated backup behind.
	tmp, err := os.CreateTemp(j.Dir, ".themes-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write backup file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize backup file: %w", err)
	}

	log.Ctx(ctx).Info().Str("path", path).Int("bytes", len(data)).Msg("Theme backup written")
	return path, nil
}

// RegisterBackupJob schedules the backup job on s.
func (s *Service) RegisterBackupJob(job BackupJob, cronExpr string) (gocron.Job, error) {
	jobLogger := log.With().
		Str("component", "theme_backup_job").
		Str("job_name", backupJobName).
		Str("dir", job.Dir).
		Logger()

	registered, err := s.AddJob(backupJobName, cronExpr, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		_, err := job.Run(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add theme backup job: %w", err)
	}
	return registered, nil
}

// RegisterBackupJob schedules the backup job on the process-wide scheduler.
func RegisterBackupJob(job BackupJob, cronExpr string) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	_, err = svc.RegisterBackupJob(job, cronExpr)
	return err
}
