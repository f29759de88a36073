package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebox-sh/nodebox/internal/config"
	"github.com/nodebox-sh/nodebox/internal/runtime"
)

// fakeFetcher records fetch calls and materializes canned files in destDir.
type fakeFetcher struct {
	urls  []string
	files map[string]string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, url, destDir string) error {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	for name, body := range f.files {
		if err := os.WriteFile(filepath.Join(destDir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func newTestManager(t *testing.T) (*Manager, *runtime.Mock, *fakeFetcher) {
	t.Helper()
	mock := runtime.NewMock()
	fetcher := &fakeFetcher{files: map[string]string{"ledger.block.sqlite": "blocks"}}
	m := NewManager(t.TempDir(), config.Default(), mock, fetcher)
	return m, mock, fetcher
}

func TestUpUnknownNetwork(t *testing.T) {
	m, mock, fetcher := newTestManager(t)

	err := m.Up(context.Background(), LaunchRequest{Network: "devnet"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	// No mutation of any kind: no runtime writes, no fetch, no data dir.
	assert.Empty(t, mock.CallsFor("BuildImage"))
	assert.Empty(t, mock.CallsFor("RunContainer"))
	assert.Empty(t, mock.CallsFor("StartContainer"))
	assert.Empty(t, fetcher.urls)
	assert.NoDirExists(t, m.DataDir())
}

func TestUpExistingContainerExplicitNetworkConflicts(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.AddContainer("nodebox", runtime.StateExited)

	err := m.Up(context.Background(), LaunchRequest{Network: "mainnet"})

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Empty(t, mock.CallsFor("StartContainer"))
	assert.Empty(t, mock.CallsFor("BuildImage"))
}

func TestUpExistingContainerResumes(t *testing.T) {
	m, mock, fetcher := newTestManager(t)
	mock.AddContainer("nodebox", runtime.StateExited)

	require.NoError(t, m.Up(context.Background(), LaunchRequest{}))

	assert.Len(t, mock.CallsFor("StartContainer"), 1)
	assert.Empty(t, mock.CallsFor("BuildImage"), "resume must not rebuild")
	assert.Empty(t, mock.CallsFor("RunContainer"))
	assert.Empty(t, fetcher.urls)
	assert.True(t, mock.ContainerRunning("nodebox"))
}

func TestUpDataDirExplicitNetworkConflicts(t *testing.T) {
	m, mock, _ := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.DataDir(), 0o755))

	err := m.Up(context.Background(), LaunchRequest{Network: "betanet"})

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Empty(t, mock.CallsFor("BuildImage"))
	assert.Empty(t, mock.CallsFor("RunContainer"))
}

func TestUpDataDirReused(t *testing.T) {
	m, mock, fetcher := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.DataDir(), 0o755))
	genesis := filepath.Join(m.DataDir(), "genesis.json")
	require.NoError(t, os.WriteFile(genesis, []byte(`{"network":"betanet"}`), 0o644))

	require.NoError(t, m.Up(context.Background(), LaunchRequest{}))

	// Channel comes from the directory's own genesis, not the default.
	builds := mock.CallsFor("BuildImage")
	require.Len(t, builds, 1)
	assert.Equal(t, "nodebox:beta", builds[0].Args[0])
	assert.Len(t, mock.CallsFor("RunContainer"), 1)

	// No re-seed, no snapshot fetch.
	assert.Empty(t, fetcher.urls)
	data, err := os.ReadFile(genesis)
	require.NoError(t, err)
	assert.Equal(t, `{"network":"betanet"}`, string(data))
}

func TestUpSnapshotUnsupportedNetwork(t *testing.T) {
	for _, network := range []string{"mainnet", "betanet"} {
		t.Run(network, func(t *testing.T) {
			m, mock, fetcher := newTestManager(t)

			err := m.Up(context.Background(), LaunchRequest{Network: network, UseSnapshot: true})

			var uErr *UnsupportedError
			require.ErrorAs(t, err, &uErr)
			assert.Empty(t, fetcher.urls, "no download may be attempted")
			assert.Empty(t, mock.CallsFor("BuildImage"))
			assert.NoDirExists(t, m.DataDir())
		})
	}
}

func TestUpSnapshotSeedsAndRuns(t *testing.T) {
	m, mock, fetcher := newTestManager(t)

	require.NoError(t, m.Up(context.Background(), LaunchRequest{Network: "testnet", UseSnapshot: true}))

	require.Len(t, fetcher.urls, 1)
	assert.Contains(t, fetcher.urls[0], "testnet")

	// Extracted snapshot contents coexist with the seeded static files.
	assert.FileExists(t, filepath.Join(m.DataDir(), "ledger.block.sqlite"))
	assert.FileExists(t, filepath.Join(m.DataDir(), "config.json"))
	assert.FileExists(t, filepath.Join(m.DataDir(), "genesis.json"))

	builds := mock.CallsFor("BuildImage")
	require.Len(t, builds, 1)
	assert.Equal(t, "nodebox:stable", builds[0].Args[0])
	assert.Len(t, mock.CallsFor("RunContainer"), 1)
}

func TestUpFetchFailureLeavesNoDataDir(t *testing.T) {
	m, mock, fetcher := newTestManager(t)
	fetcher.err = assert.AnError

	err := m.Up(context.Background(), LaunchRequest{Network: "testnet", UseSnapshot: true})

	require.Error(t, err)
	assert.NoDirExists(t, m.DataDir(), "failed fetch must not leave a partial data dir")
	assert.Empty(t, mock.CallsFor("BuildImage"))
}

func TestUpDefaultsToTestnet(t *testing.T) {
	m, mock, _ := newTestManager(t)

	require.NoError(t, m.Up(context.Background(), LaunchRequest{}))

	builds := mock.CallsFor("BuildImage")
	require.Len(t, builds, 1)
	assert.Equal(t, "nodebox:stable", builds[0].Args[0])

	data, err := os.ReadFile(filepath.Join(m.DataDir(), "genesis.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"network": "testnet"`)
}

func TestCleanIsIdempotent(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.AddContainer("nodebox", runtime.StateRunning)
	mock.BuildImage(runtime.BuildOptions{Tag: "nodebox:stable"})
	require.NoError(t, os.MkdirAll(m.DataDir(), 0o755))

	require.NoError(t, m.Clean())
	assert.False(t, mock.ContainerExists("nodebox"))
	assert.False(t, mock.HasImage("nodebox:stable"))
	assert.NoDirExists(t, m.DataDir())

	// Second clean finds nothing to do and still succeeds.
	require.NoError(t, m.Clean())
}

func TestDownWithoutContainer(t *testing.T) {
	m, _, _ := newTestManager(t)
	require.Error(t, m.Down())
}

func TestRestart(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.AddContainer("nodebox", runtime.StateRunning)

	require.NoError(t, m.Restart())
	assert.Len(t, mock.CallsFor("StopContainer"), 1)
	assert.Len(t, mock.CallsFor("StartContainer"), 1)
	assert.True(t, mock.ContainerRunning("nodebox"))
}

func TestGoalAppendsDataDirFlag(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.AddContainer("nodebox", runtime.StateRunning)

	require.NoError(t, m.Goal([]string{"account", "list"}))

	calls := mock.CallsFor("ExecStdio")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"nodebox", "goal", "account", "list", "-d", ContainerDataDir}, calls[0].Args)
}
