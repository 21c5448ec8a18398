// Package uploader stages local artifacts into the demo bucket: the Cloud
// Build source archive during setup, and test reports plus failure
// screenshots after a run.
package uploader

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
	"github.com/wajahatashraf/gcp-setup/internal/gcp"
)

// Uploader writes artifacts to a single bucket.
type Uploader struct {
	storage gcp.StorageClient
	bucket  string
	log     *slog.Logger
}

// New returns an Uploader targeting the given bucket.
func New(storage gcp.StorageClient, bucket string, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{storage: storage, bucket: bucket, log: log}
}

// UploadReport uploads the HTML report to constants.ReportObjectName and
// every .png under screenshotsDir to constants.ScreenshotObjectPrefix.
// A missing screenshots directory is skipped silently; a missing report
// file is an error. Returns the uploaded object names.
func (u *Uploader) UploadReport(ctx context.Context, reportPath, screenshotsDir string) ([]string, error) {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if err := u.storage.Upload(ctx, u.bucket, constants.ReportObjectName, data); err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	uploaded := []string{constants.ReportObjectName}
	u.log.Info("uploaded report", "bucket", u.bucket, "object", constants.ReportObjectName)

	entries, err := os.ReadDir(screenshotsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return uploaded, nil
		}
		return uploaded, fmt.Errorf("read screenshots dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		shot, err := os.ReadFile(filepath.Join(screenshotsDir, entry.Name()))
		if err != nil {
			return uploaded, fmt.Errorf("read screenshot %s: %w", entry.Name(), err)
		}
		object := constants.ScreenshotObjectPrefix + entry.Name()
		if err := u.storage.Upload(ctx, u.bucket, object, shot); err != nil {
			return uploaded, fmt.Errorf("upload screenshot %s: %w", entry.Name(), err)
		}
		uploaded = append(uploaded, object)
		u.log.Info("uploaded screenshot", "bucket", u.bucket, "object", object)
	}

	return uploaded, nil
}

// StageSource tars the directory and uploads it as a Cloud Build source
// archive, returning the object name.
func (u *Uploader) StageSource(ctx context.Context, dir, serviceName string) (string, error) {
	tarball, err := Tarball(dir)
	if err != nil {
		return "", fmt.Errorf("failed to create tarball: %w", err)
	}

	object := constants.SourceObjectPrefix + serviceName + ".tar.gz"
	if err := u.storage.Upload(ctx, u.bucket, object, tarball); err != nil {
		return "", fmt.Errorf("failed to upload source archive: %w", err)
	}
	u.log.Info("staged build source", "bucket", u.bucket, "object", object, "bytes", len(tarball))
	return object, nil
}

// Tarball gzips the directory contents with paths relative to dir, skipping
// hidden files and common build artifacts.
func Tarball(sourceDir string) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	absPath, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(absPath, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if shouldIgnore(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = relPath

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tarWriter, file)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shouldIgnore(relPath string) bool {
	base := filepath.Base(relPath)
	if strings.HasPrefix(base, ".") {
		return true
	}
	switch base {
	case "node_modules", "__pycache__", "venv":
		return true
	}
	return false
}
