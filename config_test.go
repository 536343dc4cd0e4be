package registre

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if c.Database.Path == "" || c.Downloads.Dir == "" {
		t.Errorf("defaults missing: %+v", c)
	}
	if c.INPI.Workers < 1 {
		t.Errorf("INPI.Workers = %d, want at least 1", c.INPI.Workers)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: /tmp/custom.db
inpi:
  years: "2020-2022"
  workers: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if c.Database.Path != "/tmp/custom.db" {
		t.Errorf("Database.Path = %q", c.Database.Path)
	}
	if c.INPI.Years != "2020-2022" || c.INPI.Workers != 2 {
		t.Errorf("INPI = %+v", c.INPI)
	}
	// untouched keys keep their defaults
	if c.BODACC.PageSize != 100 {
		t.Errorf("BODACC.PageSize = %d, want default 100", c.BODACC.PageSize)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/env.db")
	t.Setenv("PAPPERS_API_KEY", "secret")
	c, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q, want env override", c.Database.Path)
	}
	if c.Pappers.APIKey != "secret" {
		t.Errorf("Pappers.APIKey = %q, want env override", c.Pappers.APIKey)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig() expected an error for a missing file")
	}
}
