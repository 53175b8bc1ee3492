package download

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/distantorigin/osb-installer/internal/installerr"
)

// Fetcher downloads zip archives into memory and extracts them
type Fetcher struct {
	Client *http.Client
}

// NewFetcher creates a fetcher; a nil client gets a long download timeout
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Fetcher{Client: httpClient}
}

// Ensure downloads url and extracts it into destDir unless destDir/marker
// already exists. Errors are returned as-is; there is no retry.
func (f *Fetcher) Ensure(ctx context.Context, url, destDir, marker string) error {
	markerPath := filepath.Join(destDir, marker)
	if _, err := os.Stat(markerPath); err == nil {
		log.Debugf("%s already present, skipping download", markerPath)
		return nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return installerr.New(installerr.Filesystem, "create "+destDir, err)
	}

	data, err := f.Get(ctx, url)
	if err != nil {
		return err
	}

	return ExtractZip(data, destDir)
}

// Get performs a blocking GET and returns the whole body
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	op := "download " + url

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, installerr.New(installerr.Download, op, err)
	}
	req.Header.Set("User-Agent", "osb-installer")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, installerr.New(installerr.Download, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, installerr.Errorf(installerr.Download, op, "HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, installerr.New(installerr.Download, op, fmt.Errorf("failed to read archive data: %w", err))
	}
	log.Debugf("downloaded %d bytes from %s", len(data), url)
	return data, nil
}

// ExtractZip extracts an in-memory zip archive into destDir
func ExtractZip(data []byte, destDir string) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return installerr.New(installerr.Archive, "open archive", err)
	}
	return extract(r.File, destDir)
}

// ExtractZipFile extracts a zip archive on disk into destDir
func ExtractZipFile(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return installerr.New(installerr.Archive, "open "+zipPath, err)
	}
	defer r.Close()
	return extract(r.File, destDir)
}

func extract(files []*zip.File, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return installerr.New(installerr.Filesystem, "create "+destDir, err)
	}

	for _, file := range files {
		name := filepath.FromSlash(strings.ReplaceAll(file.Name, `\`, "/"))
		target, err := ValidatePath(destDir, filepath.Join(destDir, name))
		if err != nil {
			return installerr.New(installerr.Archive, "entry "+file.Name, err)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return installerr.New(installerr.Filesystem, "create "+target, err)
			}
			continue
		}

		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return installerr.New(installerr.Filesystem, "create "+filepath.Dir(target), err)
	}

	rc, err := file.Open()
	if err != nil {
		return installerr.New(installerr.Archive, "open entry "+file.Name, err)
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return installerr.New(installerr.Filesystem, "create "+target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		// a read failure here means the entry itself is corrupt
		if _, ok := err.(*os.PathError); ok {
			return installerr.New(installerr.Filesystem, "write "+target, err)
		}
		return installerr.New(installerr.Archive, "read entry "+file.Name, err)
	}
	if err := out.Close(); err != nil {
		return installerr.New(installerr.Filesystem, "close "+target, err)
	}
	return nil
}
