package backup

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

const backupFolder = "backups/database"

// DumpFunc produces a database dump for dsn.
type DumpFunc func(ctx context.Context, dsn string) ([]byte, error)

// PgDump shells out to pg_dump in custom format.
func PgDump(ctx context.Context, dsn string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump", "--dbname="+dsn, "--format=c")

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pg_dump failed: %w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}

type BackupUseCase struct {
	dsn      string
	dump     DumpFunc
	uploader service.Uploader
	logger   logger.Logger
	now      func() time.Time
}

func NewBackupUseCase(dsn string, dump DumpFunc, uploader service.Uploader, log logger.Logger) *BackupUseCase {
	return &BackupUseCase{
		dsn:      dsn,
		dump:     dump,
		uploader: uploader,
		logger:   log,
		now:      time.Now,
	}
}

type BackupOutput struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int    `json:"size_bytes"`
}

func (uc *BackupUseCase) Execute(ctx context.Context, actor string) (*BackupOutput, error) {
	uc.logger.Info("Starting database backup...", zap.String("actor", actor))

	data, err := uc.dump(ctx, uc.dsn)
	if err != nil {
		uc.logger.Error("Database dump failed", err)
		return nil, apperror.NewInternal("database dump failed", err)
	}

	timestamp := uc.now().UTC().Format("2006-01-02_15-04-05")
	publicID := fmt.Sprintf("%s/backup-%s.dump", backupFolder, timestamp)

	uploadURL, err := uc.uploader.Upload(ctx, bytes.NewReader(data), backupFolder, publicID)
	if err != nil {
		uc.logger.Error("Failed to upload backup to Cloudinary", err)
		return nil, apperror.NewInternal("backup upload failed", err)
	}

	uc.logger.Info("Database backup completed and uploaded successfully",
		zap.String("url", uploadURL),
		zap.String("public_id", publicID),
	)
	return &BackupOutput{URL: uploadURL, PublicID: publicID, Size: len(data)}, nil
}
