package domain

import (
	"context"
	"errors"
)

var ErrFileStorageDisabled = errors.New("file storage is not configured")

// FileRepository defines the interface for file storage operations
type FileRepository interface {
	// Upload saves a file and returns its access URL
	Upload(ctx context.Context, file []byte, key string, contentType string) (string, error)
}

// ExportFormat selects how a workout export is rendered
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportFile is a rendered export ready to be downloaded or uploaded
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
