package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := SaveDefault(path); err != nil {
		t.Fatalf("save default: %v", err)
	}
	if err := SaveDefault(path); err == nil {
		t.Fatalf("expected saving over an existing file to fail")
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultSettings()
	if s.Movement != def.Movement || s.Interpolation != def.Interpolation {
		t.Fatalf("expected default simulation settings, got %+v", s)
	}
	if s.Movement.Fingerprint() != def.Movement.Fingerprint() {
		t.Fatalf("expected loaded movement config to keep its fingerprint")
	}
	if s.Server != def.Server || s.Client != def.Client {
		t.Fatalf("expected default server and client settings, got %+v %+v", s.Server, s.Client)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected missing file to fail")
	}

	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[Movement]\nGravity = -3.0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected negative gravity to be rejected")
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	s, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load or create: %v", err)
	}
	if s.Server.TickRate != DefaultSettings().Server.TickRate {
		t.Fatalf("expected default tick rate, got %d", s.Server.TickRate)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected settings file to be created: %v", err)
	}
}
