package snapshot

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name string
	body string
	dir  bool
}

func buildArchive(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		if e.dir {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     e.name,
				Typeflag: tar.TypeDir,
				Mode:     0o755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     e.name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(e.body)),
		}))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchExtractsArchive(t *testing.T) {
	archive := buildArchive(t, []entry{
		{name: "testnet-v1.0", dir: true},
		{name: "testnet-v1.0/ledger.block.sqlite", body: "blocks"},
		{name: "testnet-v1.0/ledger.tracker.sqlite", body: "tracker"},
	})
	srv := serveArchive(t, archive, http.StatusOK)

	dest := filepath.Join(t.TempDir(), "data")
	f := NewHTTPFetcher()
	require.NoError(t, f.Fetch(context.Background(), srv.URL, dest))

	blocks, err := os.ReadFile(filepath.Join(dest, "testnet-v1.0", "ledger.block.sqlite"))
	require.NoError(t, err)
	assert.Equal(t, "blocks", string(blocks))

	// The downloaded archive itself must be gone.
	_, err = os.Stat(filepath.Join(dest, "snapshot.tar.gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetchRejectsTraversal(t *testing.T) {
	archive := buildArchive(t, []entry{
		{name: "../escape", body: "nope"},
	})
	srv := serveArchive(t, archive, http.StatusOK)

	dest := filepath.Join(t.TempDir(), "data")
	f := NewHTTPFetcher()
	err := f.Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsafe path")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchHTTPError(t *testing.T) {
	srv := serveArchive(t, nil, http.StatusNotFound)

	dest := filepath.Join(t.TempDir(), "data")
	f := NewHTTPFetcher()
	err := f.Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestFetchBadGzip(t *testing.T) {
	srv := serveArchive(t, []byte("this is not a gzip stream"), http.StatusOK)

	dest := filepath.Join(t.TempDir(), "data")
	f := NewHTTPFetcher()
	require.Error(t, f.Fetch(context.Background(), srv.URL, dest))
}
