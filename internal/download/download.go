package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/distantorigin/osb-installer/internal/installerr"
)

var client = grab.NewClient()

// ProgressCallback is called during download with progress info
type ProgressCallback func(bytesComplete, totalBytes int64, percentage int)

// FileWithProgress downloads a file with progress callback
func FileWithProgress(url, targetPath string, callback ProgressCallback) error {
	req, err := grab.NewRequest(targetPath, url)
	if err != nil {
		return installerr.New(installerr.Download, "create request", err)
	}
	req.NoResume = true // Always overwrite, never resume

	resp := client.Do(req)

	// Progress loop
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastPercentage := -1
	for {
		select {
		case <-ticker.C:
			if callback != nil {
				var percentage int
				if resp.Size() > 0 {
					percentage = int(resp.Progress() * 100)
				}
				if percentage != lastPercentage {
					callback(resp.BytesComplete(), resp.Size(), percentage)
					lastPercentage = percentage
				}
			}
		case <-resp.Done:
			if callback != nil && resp.Size() > 0 {
				callback(resp.BytesComplete(), resp.Size(), 100)
			}
			goto done
		}
	}
done:

	if err := resp.Err(); err != nil {
		return installerr.New(installerr.Download, "download "+url, err)
	}

	return nil
}

// ToTempWithProgress downloads with progress to a temp file and returns its path
func ToTempWithProgress(url, prefix string, callback ProgressCallback) (string, error) {
	tempFile, err := os.CreateTemp("", prefix+"*.tmp")
	if err != nil {
		return "", installerr.New(installerr.Filesystem, "create temp file", err)
	}
	tempPath := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		return "", installerr.New(installerr.Filesystem, "close temp file", err)
	}

	if err := FileWithProgress(url, tempPath, callback); err != nil {
		_ = os.Remove(tempPath) // Best effort cleanup
		return "", err
	}

	return tempPath, nil
}

// ValidatePath ensures a path doesn't escape the base directory (path traversal protection)
func ValidatePath(basePath, targetPath string) (string, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target path: %w", err)
	}

	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absTarget, nil
}
