// Package datadir manages the bind-mounted node data directory: seeding it
// with the static config set and the network's genesis file, and reading the
// API token the node writes once it runs.
package datadir

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed files
var files embed.FS

// TokenFile is written by the node on first start and authenticates REST calls.
const TokenFile = "algod.token"

// Exists reports whether dir is present on disk.
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Seed creates dir (if needed) and copies the static config set plus the
// genesis definition for the named network into it. Snapshot contents already
// extracted into dir are left alone; only the static files are (over)written.
func Seed(dir, network string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	cfg, err := files.ReadFile("files/config.json")
	if err != nil {
		return fmt.Errorf("reading embedded config: %w", err)
	}
	// The bootstrap entry is templated on the network name.
	cfg = []byte(strings.ReplaceAll(string(cfg), "<network>", network))
	if err := os.WriteFile(filepath.Join(dir, "config.json"), cfg, 0o644); err != nil {
		return fmt.Errorf("writing config.json: %w", err)
	}

	gen, err := files.ReadFile("files/genesis/" + network + ".json")
	if err != nil {
		return fmt.Errorf("no genesis definition for network %q: %w", network, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "genesis.json"), gen, 0o644); err != nil {
		return fmt.Errorf("writing genesis.json: %w", err)
	}
	return nil
}

// ReadToken returns the node's REST API token from dir, trimmed.
func ReadToken(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, TokenFile))
	if err != nil {
		return "", fmt.Errorf("reading API token (has the node run yet?): %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
