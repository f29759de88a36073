package config

import (
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{
		Version:   "1",
		Container: "my-node",
		Image:     "my-node-img",
		Port:      14001,
		DataDir:   "node-data",
	}

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Container != "my-node" {
		t.Errorf("Container = %q, want %q", loaded.Container, "my-node")
	}
	if loaded.Port != 14001 {
		t.Errorf("Port = %d, want 14001", loaded.Port)
	}
	if loaded.DataDir != "node-data" {
		t.Errorf("DataDir = %q, want %q", loaded.DataDir, "node-data")
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Container != "nodebox" {
		t.Errorf("Container = %q, want nodebox", cfg.Container)
	}
	if cfg.Port != 4001 {
		t.Errorf("Port = %d, want 4001", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists should be false before save")
	}

	if err := Save(dir, Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(dir) {
		t.Error("Exists should be true after save")
	}
}
