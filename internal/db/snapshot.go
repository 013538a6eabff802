package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/avelichka/steptrack/internal/models"
)

// BackupSource produces a full snapshot of the store.
type BackupSource interface {
	Backup(ctx context.Context) (*models.Backup, error)
}

// StartSnapshotWriter writes periodic JSON backups of the store into dir
// until ctx is cancelled. Each file is named after the snapshot date and ID,
// so runs never overwrite each other.
func StartSnapshotWriter(
	ctx context.Context,
	src BackupSource,
	dir string,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b, err := src.Backup(ctx)
				if err != nil {
					log.Error("failed to snapshot store", zap.Error(err))
					continue
				}
				path, err := writeSnapshot(dir, b)
				if err != nil {
					log.Error("failed to write snapshot", zap.Error(err))
					continue
				}
				log.Info("wrote store snapshot",
					zap.String("path", path),
					zap.Int("profiles", len(b.Profiles)),
				)
			}
		}
	}()
}

func writeSnapshot(dir string, b *models.Backup) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	name := fmt.Sprintf("steps-backup-%s-%s.json", time.Now().Format(models.DateLayout), shortID(b.ID))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// shortID keeps file names readable; the full ID stays inside the snapshot.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
