// Package filestore archives uploaded statement files on the local
// filesystem, one directory per import job, with a JSON metadata sidecar.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileInfo describes one archived upload.
type FileInfo struct {
	JobID       uuid.UUID `json:"job_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Archive stores original statement uploads so a problem import can be
// inspected after the fact.
type Archive struct {
	basePath string
}

// New creates the archive directory when missing.
func New(basePath string) (*Archive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

// Save writes the raw upload under the job's directory.
func (a *Archive) Save(_ context.Context, jobID uuid.UUID, filename, contentType string, data []byte) (*FileInfo, error) {
	jobDir := filepath.Join(a.basePath, jobID.String())
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create job directory: %w", err)
	}

	safe := sanitizeFilename(filename)
	if err := os.WriteFile(filepath.Join(jobDir, safe), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write archived file: %w", err)
	}

	info := &FileInfo{
		JobID:       jobID,
		Name:        safe,
		Size:        int64(len(data)),
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}
	meta, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(jobDir, "meta.json"), meta, 0644); err != nil {
		os.RemoveAll(jobDir)
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	return info, nil
}

// Open returns a reader over the archived upload for a job.
func (a *Archive) Open(ctx context.Context, jobID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := a.Info(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(a.basePath, jobID.String(), info.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archived file: %w", err)
	}
	return f, info, nil
}

// Info reads the metadata sidecar for a job.
func (a *Archive) Info(_ context.Context, jobID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(filepath.Join(a.basePath, jobID.String(), "meta.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no archived upload for job %s", jobID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

// List returns metadata for every archived job, newest first not guaranteed.
func (a *Archive) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(a.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	infos := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		jobID, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}
		info, err := a.Info(ctx, jobID)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Prune removes archived jobs older than the retention window and reports
// how many were dropped.
func (a *Archive) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	infos, err := a.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-olderThan)
	pruned := 0
	for _, info := range infos {
		if info.CreatedAt.After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(a.basePath, info.JobID.String())); err != nil {
			return pruned, fmt.Errorf("failed to prune job %s: %w", info.JobID, err)
		}
		pruned++
	}
	return pruned, nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	safe := replacer.Replace(name)
	if safe == "" {
		safe = "upload"
	}
	return safe
}
