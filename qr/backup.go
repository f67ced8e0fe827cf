package qr

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Backup copies the upload directory into a timestamped folder once a day at
// Hour:Minute and removes folders older than Retention.
type Backup struct {
	Src       string
	Dest      string
	Retention time.Duration
	Hour      int
	Minute    int
	Log       *zap.Logger
}

// Run schedules backups until ctx is done.
func (b Backup) Run(ctx context.Context) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	for {
		now := time.Now()
		next := nextRun(now, b.Hour, b.Minute)
		log.Info("next upload backup scheduled", zap.Time("at", next))

		t := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}

		dest, err := b.RunOnce(time.Now())
		if err != nil {
			log.Error("upload backup failed", zap.Error(err))
		} else {
			log.Info("uploads backed up", zap.String("dest", dest))
		}
		for _, removed := range cleanupOldBackups(b.Dest, b.Retention, time.Now(), log) {
			log.Info("removed old backup", zap.String("path", removed))
		}
	}
}

// RunOnce copies Src into Dest/<timestamp> and returns that folder.
func (b Backup) RunOnce(at time.Time) (string, error) {
	destDir := filepath.Join(b.Dest, at.Format("2006-01-02_15-04-05"))
	return destDir, copyDir(b.Src, destDir)
}

func nextRun(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
		} else if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// cleanupOldBackups removes backup folders modified before now-retention and
// returns the removed paths.
func cleanupOldBackups(backupDir string, retention time.Duration, now time.Time, log *zap.Logger) []string {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		log.Warn("read backup directory", zap.Error(err))
		return nil
	}

	cutoff := now.Add(-retention)
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(backupDir, entry.Name())
		info, err := os.Stat(folderPath)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folderPath); err != nil {
				log.Warn("remove old backup", zap.String("path", folderPath), zap.Error(err))
				continue
			}
			removed = append(removed, folderPath)
		}
	}
	return removed
}
