package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nodebox-sh/nodebox/internal/config"
	"github.com/nodebox-sh/nodebox/internal/datadir"
	"github.com/nodebox-sh/nodebox/internal/logging"
	"github.com/nodebox-sh/nodebox/internal/netcfg"
	"github.com/nodebox-sh/nodebox/internal/runtime"
	"github.com/nodebox-sh/nodebox/internal/snapshot"
)

// Manager drives the sandbox lifecycle. One command per invocation, fully
// synchronous; it never persists state of its own.
type Manager struct {
	rootDir string
	cfg     *config.Config
	rt      runtime.Runtime
	fetcher snapshot.Fetcher
	uid     int
	gid     int
}

// NewManager creates a lifecycle manager rooted at rootDir.
func NewManager(rootDir string, cfg *config.Config, rt runtime.Runtime, fetcher snapshot.Fetcher) *Manager {
	return &Manager{
		rootDir: rootDir,
		cfg:     cfg,
		rt:      rt,
		fetcher: fetcher,
		uid:     os.Getuid(),
		gid:     os.Getgid(),
	}
}

// DataDir returns the host path of the bind-mounted data directory.
func (m *Manager) DataDir() string {
	return filepath.Join(m.rootDir, m.cfg.DataDir)
}

// ComputeState derives the sandbox state from the container runtime and the
// filesystem.
func (m *Manager) ComputeState() State {
	exists := m.rt.ContainerExists(m.cfg.Container)
	return State{
		ContainerExists:  exists,
		ContainerRunning: exists && m.rt.ContainerRunning(m.cfg.Container),
		DataDirExists:    datadir.Exists(m.DataDir()),
	}
}

// Up creates or resumes the sandbox. Lifecycle violations are detected before
// any mutating call; infrastructure failures propagate without retry.
func (m *Manager) Up(ctx context.Context, req LaunchRequest) error {
	st := m.ComputeState()
	logging.Debug("computed sandbox state",
		"containerExists", st.ContainerExists,
		"containerRunning", st.ContainerRunning,
		"dataDirExists", st.DataDirExists)

	if st.ContainerExists {
		if req.Explicit() {
			return &ConflictError{Reason: fmt.Sprintf(
				"a sandbox container %q already exists; run `nodebox clean` before starting with new parameters",
				m.cfg.Container)}
		}
		fmt.Printf("Resuming existing sandbox container %q...\n", m.cfg.Container)
		if err := m.rt.StartContainer(m.cfg.Container); err != nil {
			return err
		}
		m.reportStatus(ctx)
		return nil
	}

	var profile netcfg.Profile
	switch {
	case st.DataDirExists:
		if req.Explicit() {
			return &ConflictError{Reason: fmt.Sprintf(
				"data directory %s already exists; remove it (or run `nodebox clean`) before switching networks, or run `nodebox up` without a network to reuse it",
				m.DataDir())}
		}
		// The data directory is authoritative: infer its network from the
		// genesis file it holds, never re-seed it.
		profile = m.profileFromDataDir()
		fmt.Printf("Reusing existing data directory (%s)...\n", profile.Name)

	default:
		var err error
		profile, err = netcfg.Resolve(req.Network, config.NetworksPath(m.rootDir))
		if err != nil {
			return &ValidationError{Reason: err.Error()}
		}

		if req.UseSnapshot && !profile.HasSnapshot() {
			return &UnsupportedError{Reason: fmt.Sprintf(
				"no ledger snapshot is published for %s", profile.Name)}
		}

		if req.UseSnapshot {
			fmt.Printf("Fetching %s ledger snapshot...\n", profile.Name)
			if err := m.fetcher.Fetch(ctx, profile.SnapshotURL, m.DataDir()); err != nil {
				os.RemoveAll(m.DataDir())
				return fmt.Errorf("seeding from snapshot: %w", err)
			}
		}

		fmt.Printf("Seeding data directory for %s...\n", profile.Name)
		if err := datadir.Seed(m.DataDir(), profile.Name); err != nil {
			os.RemoveAll(m.DataDir())
			return err
		}
	}

	if err := m.buildAndRun(profile); err != nil {
		return err
	}

	fmt.Printf("Sandbox %q is up (REST endpoint on port %d).\n", m.cfg.Container, m.cfg.Port)
	m.reportStatus(ctx)
	return nil
}

func (m *Manager) buildAndRun(profile netcfg.Profile) error {
	dockerfilePath, contextDir, err := writeDockerfile(m.rootDir)
	if err != nil {
		return fmt.Errorf("writing Dockerfile: %w", err)
	}

	tag := fmt.Sprintf("%s:%s", m.cfg.Image, profile.Channel)
	fmt.Printf("Building image %s (may take a while on first run)...\n", tag)
	if err := m.rt.BuildImage(runtime.BuildOptions{
		Tag:        tag,
		Dockerfile: dockerfilePath,
		ContextDir: contextDir,
		BuildArgs: map[string]string{
			"CHANNEL":  profile.Channel,
			"USER_ID":  strconv.Itoa(m.uid),
			"GROUP_ID": strconv.Itoa(m.gid),
		},
	}); err != nil {
		return err
	}

	fmt.Println("Starting container...")
	id, err := m.rt.RunContainer(runtime.RunOptions{
		Name:    m.cfg.Container,
		Image:   tag,
		Publish: []string{fmt.Sprintf("%d:4001", m.cfg.Port)},
		Mounts:  []string{fmt.Sprintf("%s:%s", m.DataDir(), ContainerDataDir)},
		User:    fmt.Sprintf("%d:%d", m.uid, m.gid),
	})
	if err != nil {
		return err
	}
	logging.Debug("container started", "id", id)
	return nil
}

// profileFromDataDir infers the network from the genesis file an existing
// data directory holds, so resume builds against the matching channel. An
// unreadable or foreign genesis falls back to the default network.
func (m *Manager) profileFromDataDir() netcfg.Profile {
	fallback, _ := netcfg.Resolve(netcfg.DefaultNetwork, "")

	data, err := os.ReadFile(filepath.Join(m.DataDir(), "genesis.json"))
	if err != nil {
		logging.Debug("cannot read genesis from data dir", "error", err)
		return fallback
	}
	var g struct {
		Network string `json:"network"`
	}
	if err := json.Unmarshal(data, &g); err != nil || g.Network == "" {
		logging.Debug("cannot parse genesis from data dir", "error", err)
		return fallback
	}

	profile, err := netcfg.Resolve(g.Network, config.NetworksPath(m.rootDir))
	if err != nil {
		logging.Warn("data directory genesis names an unknown network, using default channel",
			"network", g.Network)
		return fallback
	}
	return profile
}

// Down stops the sandbox container.
func (m *Manager) Down() error {
	if !m.rt.ContainerExists(m.cfg.Container) {
		return fmt.Errorf("no sandbox container %q (run `nodebox up` first)", m.cfg.Container)
	}
	return m.rt.StopContainer(m.cfg.Container)
}

// Restart stops and starts the sandbox container.
func (m *Manager) Restart() error {
	if err := m.Down(); err != nil {
		return err
	}
	return m.rt.StartContainer(m.cfg.Container)
}

// Clean tears everything down: container, images, data directory. Every step
// is best-effort; missing resources are not errors, so clean is idempotent.
func (m *Manager) Clean() error {
	if err := m.rt.StopContainer(m.cfg.Container); err != nil {
		logging.Debug("clean: stop container", "error", err)
	}
	if err := m.rt.RemoveContainer(m.cfg.Container); err != nil {
		logging.Debug("clean: remove container", "error", err)
	}
	if err := m.rt.RemoveImages(m.cfg.Image); err != nil {
		logging.Debug("clean: remove images", "error", err)
	}
	if err := m.rt.PruneDanglingImages(); err != nil {
		logging.Debug("clean: prune dangling images", "error", err)
	}
	if err := os.RemoveAll(m.DataDir()); err != nil {
		logging.Debug("clean: remove data dir", "error", err)
	}
	fmt.Println("Sandbox cleaned.")
	return nil
}

// Status runs the node status query inside the container, output to the
// terminal. The error carries the delegated command's exit status.
func (m *Manager) Status() error {
	return m.rt.ExecStdio(m.cfg.Container, "goal", "node", "status", "-d", ContainerDataDir)
}

// Goal forwards arbitrary arguments to the goal binary in the container with
// the data directory flag appended.
func (m *Manager) Goal(args []string) error {
	full := append([]string{"goal"}, args...)
	full = append(full, "-d", ContainerDataDir)
	return m.rt.ExecStdio(m.cfg.Container, full...)
}

// Enter attaches an interactive shell inside the container.
func (m *Manager) Enter() error {
	cmd := m.rt.InteractiveCmd(m.cfg.Container, "/bin/bash")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// TailLogs follows the node log inside the container. The caller owns the
// reader and decides how to render it.
func (m *Manager) TailLogs() (io.ReadCloser, error) {
	if !m.rt.ContainerRunning(m.cfg.Container) {
		return nil, fmt.Errorf("sandbox container %q is not running", m.cfg.Container)
	}
	return m.rt.TailFile(m.cfg.Container, ContainerDataDir+"/node.log")
}

// Probe queries the node's REST status endpoint on the published host port,
// authenticated with the token the node wrote into the data directory.
func (m *Manager) Probe(ctx context.Context) (string, error) {
	token, err := datadir.ReadToken(m.DataDir())
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d/v2/status", m.cfg.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Algo-API-Token", token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("node REST endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("node REST endpoint returned %s", resp.Status)
	}

	var status struct {
		LastRound uint64 `json:"last-round"`
		CatchupMs uint64 `json:"catchup-time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("decoding node status: %w", err)
	}
	return fmt.Sprintf("last round %d, catchup time %dms", status.LastRound, status.CatchupMs), nil
}

// Test runs a diagnostic pass: a couple of goal probes plus the REST status
// check. Individual probe failures are reported but never abort the pass.
func (m *Manager) Test(ctx context.Context) error {
	probes := [][]string{
		{"goal", "version", "-v", "-d", ContainerDataDir},
		{"goal", "node", "status", "-d", ContainerDataDir},
	}
	for _, p := range probes {
		fmt.Printf("$ %s\n", strings.Join(p, " "))
		out, err := m.rt.Exec(m.cfg.Container, p...)
		if err != nil {
			fmt.Printf("  probe failed: %v\n", err)
			continue
		}
		fmt.Print(out)
	}

	fmt.Printf("$ GET http://localhost:%d/v2/status\n", m.cfg.Port)
	summary, err := m.Probe(ctx)
	if err != nil {
		fmt.Printf("  probe failed: %v\n", err)
		return nil
	}
	fmt.Printf("  %s\n", summary)
	return nil
}

// reportStatus shows the node status after a successful up. The sandbox is
// considered up even when the probe fails, so failures only warn.
func (m *Manager) reportStatus(ctx context.Context) {
	summary, err := m.Probe(ctx)
	if err != nil {
		logging.Debug("status probe failed", "error", err)
		return
	}
	fmt.Printf("Node status: %s\n", summary)
}
