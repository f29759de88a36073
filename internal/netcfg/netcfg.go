package netcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultNetwork is used when `up` is invoked without a network argument.
const DefaultNetwork = "testnet"

// Profile describes one public network the sandbox can join.
type Profile struct {
	Name           string `yaml:"name"`
	Channel        string `yaml:"channel"`
	GenesisVersion string `yaml:"genesis_version"`
	SnapshotURL    string `yaml:"snapshot_url,omitempty"`
}

// HasSnapshot reports whether a ledger snapshot archive is published for
// this network.
func (p Profile) HasSnapshot() bool { return p.SnapshotURL != "" }

// builtins is the static network table. Only testnet publishes a snapshot.
var builtins = map[string]Profile{
	"mainnet": {
		Name:           "mainnet",
		Channel:        "stable",
		GenesisVersion: "mainnet-v1.0",
	},
	"testnet": {
		Name:           "testnet",
		Channel:        "stable",
		GenesisVersion: "testnet-v1.0",
		SnapshotURL:    "https://algorand-snapshots.s3.us-east-1.amazonaws.com/network/testnet-v1.0/latest.tar.gz",
	},
	"betanet": {
		Name:           "betanet",
		Channel:        "beta",
		GenesisVersion: "betanet-v1.0",
	},
}

// overrideFile is the optional per-sandbox network override, merged over the
// built-in table. Lives next to the sandbox config.
type overrideFile struct {
	Networks map[string]Profile `yaml:"networks"`
}

// Resolve maps a network name to its profile. An empty name resolves to the
// default network. Overrides from overridePath (if the file exists) replace
// built-in profiles wholesale.
func Resolve(name, overridePath string) (Profile, error) {
	if name == "" {
		name = DefaultNetwork
	}

	table := builtins
	if overridePath != "" {
		merged, err := loadOverrides(overridePath)
		if err != nil {
			return Profile{}, err
		}
		table = merged
	}

	p, ok := table[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown network %q (known: %s)", name, strings.Join(names(table), ", "))
	}
	return p, nil
}

func loadOverrides(path string) (map[string]Profile, error) {
	merged := make(map[string]Profile, len(builtins))
	for k, v := range builtins {
		merged[k] = v
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return merged, nil
		}
		return nil, fmt.Errorf("reading network overrides: %w", err)
	}

	var of overrideFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	for name, p := range of.Networks {
		if p.Name == "" {
			p.Name = name
		}
		// Every profile must carry a channel and genesis version.
		if p.Channel == "" || p.GenesisVersion == "" {
			return nil, fmt.Errorf("network override %q: channel and genesis_version are required", name)
		}
		merged[name] = p
	}
	return merged, nil
}

func names(table map[string]Profile) []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
