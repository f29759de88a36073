package datadir

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSeed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	if Exists(dir) {
		t.Fatal("Exists should be false before seeding")
	}
	if err := Seed(dir, "testnet"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !Exists(dir) {
		t.Error("Exists should be true after seeding")
	}

	cfg, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("config.json: %v", err)
	}
	if !strings.Contains(string(cfg), "testnet.algorand.network") {
		t.Errorf("config.json bootstrap not templated: %s", cfg)
	}

	gen, err := os.ReadFile(filepath.Join(dir, "genesis.json"))
	if err != nil {
		t.Fatalf("genesis.json: %v", err)
	}
	var g struct {
		Network string `json:"network"`
	}
	if err := json.Unmarshal(gen, &g); err != nil {
		t.Fatalf("parsing genesis: %v", err)
	}
	if g.Network != "testnet" {
		t.Errorf("genesis network = %q, want testnet", g.Network)
	}
}

func TestSeedPreservesSnapshotContents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	os.MkdirAll(dir, 0o755)
	ledger := filepath.Join(dir, "ledger.block.sqlite")
	os.WriteFile(ledger, []byte("snapshot"), 0o644)

	if err := Seed(dir, "mainnet"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	data, err := os.ReadFile(ledger)
	if err != nil || string(data) != "snapshot" {
		t.Errorf("snapshot contents clobbered: %q, %v", data, err)
	}
}

func TestSeedUnknownNetwork(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	if err := Seed(dir, "devnet"); err == nil {
		t.Error("Seed should fail for a network without a genesis definition")
	}
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadToken(dir); err == nil {
		t.Error("ReadToken should fail when the token file is missing")
	}

	os.WriteFile(filepath.Join(dir, TokenFile), []byte("aaaabbbb\n"), 0o644)
	tok, err := ReadToken(dir)
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if tok != "aaaabbbb" {
		t.Errorf("token = %q, want %q", tok, "aaaabbbb")
	}
}
