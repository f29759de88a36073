// Package snapshot downloads and unpacks ledger snapshot archives so a fresh
// sandbox can skip the initial sync.
package snapshot

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nodebox-sh/nodebox/internal/logging"
)

// Fetcher retrieves a remote archive and extracts it into destDir.
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string) error
}

// HTTPFetcher downloads tar.gz archives over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher using the default HTTP client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient}
}

// Fetch downloads the archive at url into destDir (created if absent),
// extracts it there, and removes the archive. The caller is responsible for
// removing destDir if Fetch fails.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	archive := filepath.Join(destDir, "snapshot.tar.gz")
	if err := f.download(ctx, url, archive); err != nil {
		return err
	}

	logging.Debug("extracting snapshot", "archive", archive, "dest", destDir)
	if err := extract(archive, destDir); err != nil {
		return err
	}

	if err := os.Remove(archive); err != nil {
		return fmt.Errorf("removing snapshot archive: %w", err)
	}
	return nil
}

func (f *HTTPFetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building snapshot request: %w", err)
	}

	logging.Debug("downloading snapshot", "url", url)
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading snapshot: unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating snapshot archive: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing snapshot archive: %w", err)
	}
	return nil
}

// extract unpacks a tar.gz archive into destDir. Entries that would escape
// destDir are rejected.
func extract(archive, destDir string) error {
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("opening snapshot archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("reading snapshot archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading snapshot archive: %w", err)
		}

		if !filepath.IsLocal(hdr.Name) {
			return fmt.Errorf("snapshot archive contains unsafe path %q", hdr.Name)
		}
		target := filepath.Join(destDir, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			out.Close()
		default:
			// Snapshots hold plain files and directories; skip anything else.
			logging.Debug("skipping archive entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
	}
}
