package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
server:
  port: 8090
  mode: test
database:
  user: medner
  password: secret
intelligence:
  genai_api_key: test-key
`

func TestLoadReadsFileAndAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Server.Mode != "test" {
		t.Errorf("mode = %q, want test", cfg.Server.Mode)
	}
	// Unset fields come from defaults.
	if cfg.Database.Host != DefaultDBHost {
		t.Errorf("host = %q, want default", cfg.Database.Host)
	}
	if cfg.Intelligence.RAGTopK != DefaultRAGTopK {
		t.Errorf("rag_top_k = %d, want default", cfg.Intelligence.RAGTopK)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8090
  mode: bogus
database:
  user: medner
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation failure for invalid mode")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("MEDNER_DATABASE_USER", "envuser")
	t.Setenv("MEDNER_DATABASE_HOST", "db.internal")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Database.User != "envuser" {
		t.Errorf("user = %q, want envuser", cfg.Database.User)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("host = %q, want db.internal", cfg.Database.Host)
	}
}

func TestMustLoadPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustLoad must panic for a missing file")
		}
	}()
	MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
}
