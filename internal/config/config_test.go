package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

var configEnvVars = []string{
	"NEXTBEST_PORT",
	"NEXTBEST_READ_TIMEOUT",
	"NEXTBEST_WRITE_TIMEOUT",
	"NEXTBEST_SHUTDOWN_TIMEOUT",
	"NEXTBEST_DB_PATH",
	"NEXTBEST_CATALOG_PATH",
	"NEXTBEST_API_KEY",
	"NEXTBEST_PERSIST_TIMEOUT",
	"NEXTBEST_RATE_LIMIT",
	"NEXTBEST_RATE_BURST",
	"NEXTBEST_MAX_DECKS",
	"NEXTBEST_SEED",
	"NEXTBEST_LOG_LEVEL",
	"NEXTBEST_LOG_FORMAT",
	"NEXTBEST_CONFIG_PATH",
	"NEXTBEST_ENV_FILE",
	"NEXTBEST_DEV_MODE",
}

// Helper to clear all config-related env vars, restoring them after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range configEnvVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
	// Keep Load from picking up a stray .env in the package directory
	t.Setenv("NEXTBEST_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func setDevModeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NEXTBEST_DEV_MODE", "true")
}

func setProdEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NEXTBEST_API_KEY", "test-api-key")
}

// dur converts Duration to time.Duration for comparison
func dur(d Duration) time.Duration {
	return time.Duration(d)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// Test: Default values when no config file and no env vars (dev mode)
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "data/nextbest.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/nextbest.db")
	}
	if cfg.Catalog.Path != "" {
		t.Errorf("Catalog.Path = %q, want empty (built-in catalog)", cfg.Catalog.Path)
	}
	if dur(cfg.Worker.PersistTimeout) != 5*time.Second {
		t.Errorf("Worker.PersistTimeout = %v, want 5s", cfg.Worker.PersistTimeout)
	}
	if cfg.Games.RateLimit != 5 || cfg.Games.RateBurst != 10 {
		t.Errorf("Games rate = %v/%d, want 5/10", cfg.Games.RateLimit, cfg.Games.RateBurst)
	}
	if cfg.Games.MaxDecks != 256 {
		t.Errorf("Games.MaxDecks = %d, want 256", cfg.Games.MaxDecks)
	}
	if cfg.Games.Seed != 0 {
		t.Errorf("Games.Seed = %d, want 0", cfg.Games.Seed)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if !cfg.DevMode {
		t.Error("DevMode = false, want true")
	}
}

// Test: Validation fails without API key (non-dev mode)
func TestLoad_ValidationFailsWithoutAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail without NEXTBEST_API_KEY")
	}
	if !strings.Contains(err.Error(), "NEXTBEST_API_KEY") {
		t.Errorf("error = %q, want mention of NEXTBEST_API_KEY", err.Error())
	}
}

func TestLoad_ValidationPassesWithAPIKey(t *testing.T) {
	clearEnv(t)
	setProdEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.APIKey != "test-api-key" {
		t.Errorf("Auth.APIKey = %q", cfg.Auth.APIKey)
	}
	if cfg.DevMode {
		t.Error("DevMode = true, want false")
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port out of range", env: map[string]string{"NEXTBEST_PORT": "70000"}},
		{name: "zero rate", env: map[string]string{"NEXTBEST_RATE_LIMIT": "0"}},
		{name: "zero burst", env: map[string]string{"NEXTBEST_RATE_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setDevModeEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want validation error")
			}
		})
	}
}

// Test: All env var mappings
func TestLoad_AllEnvVarMappings(t *testing.T) {
	clearEnv(t)
	setProdEnv(t)

	env := map[string]string{
		"NEXTBEST_PORT":             "9090",
		"NEXTBEST_READ_TIMEOUT":     "10s",
		"NEXTBEST_WRITE_TIMEOUT":    "20s",
		"NEXTBEST_SHUTDOWN_TIMEOUT": "3s",
		"NEXTBEST_DB_PATH":          "/tmp/nb.db",
		"NEXTBEST_CATALOG_PATH":     "/etc/nextbest/catalog.yaml",
		"NEXTBEST_PERSIST_TIMEOUT":  "750ms",
		"NEXTBEST_RATE_LIMIT":       "2.5",
		"NEXTBEST_RATE_BURST":       "4",
		"NEXTBEST_MAX_DECKS":        "8",
		"NEXTBEST_SEED":             "42",
		"NEXTBEST_LOG_LEVEL":        "debug",
		"NEXTBEST_LOG_FORMAT":       "text",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Server.Port", cfg.Server.Port, 9090},
		{"Server.ReadTimeout", dur(cfg.Server.ReadTimeout), 10 * time.Second},
		{"Server.WriteTimeout", dur(cfg.Server.WriteTimeout), 20 * time.Second},
		{"Server.ShutdownTimeout", dur(cfg.Server.ShutdownTimeout), 3 * time.Second},
		{"Database.Path", cfg.Database.Path, "/tmp/nb.db"},
		{"Catalog.Path", cfg.Catalog.Path, "/etc/nextbest/catalog.yaml"},
		{"Worker.PersistTimeout", dur(cfg.Worker.PersistTimeout), 750 * time.Millisecond},
		{"Games.RateLimit", cfg.Games.RateLimit, 2.5},
		{"Games.RateBurst", cfg.Games.RateBurst, 4},
		{"Games.MaxDecks", cfg.Games.MaxDecks, 8},
		{"Games.Seed", cfg.Games.Seed, uint64(42)},
		{"Log.Level", cfg.Log.Level, "debug"},
		{"Log.Format", cfg.Log.Format, "text"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

// Test: Unparseable env values are ignored
func TestLoad_BadEnvValuesIgnored(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("NEXTBEST_PORT", "not-a-port")
	t.Setenv("NEXTBEST_PERSIST_TIMEOUT", "soon")
	t.Setenv("NEXTBEST_SEED", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if dur(cfg.Worker.PersistTimeout) != 5*time.Second {
		t.Errorf("Worker.PersistTimeout = %v, want default", cfg.Worker.PersistTimeout)
	}
	if cfg.Games.Seed != 0 {
		t.Errorf("Games.Seed = %d, want 0", cfg.Games.Seed)
	}
}

func TestLoadFromFile_ValidYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeFile(t, "nextbest.yaml", `
server:
  port: 9000
  read_timeout: 5s
database:
  path: /var/lib/nextbest/nb.db
catalog:
  path: catalog.yaml
worker:
  persist_timeout: 2s
games:
  rate_limit: 1
  rate_burst: 2
  max_decks: 16
  seed: 7
log:
  level: warn
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	// Unset YAML fields keep defaults
	if dur(cfg.Server.WriteTimeout) != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Path != "/var/lib/nextbest/nb.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Catalog.Path != "catalog.yaml" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if dur(cfg.Worker.PersistTimeout) != 2*time.Second {
		t.Errorf("Worker.PersistTimeout = %v", cfg.Worker.PersistTimeout)
	}
	if cfg.Games.MaxDecks != 16 || cfg.Games.Seed != 7 {
		t.Errorf("Games = %+v", cfg.Games)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

// Test: Precedence defaults → YAML → env
func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeFile(t, "nextbest.yaml", "server:\n  port: 9000\nlog:\n  level: warn\n")
	t.Setenv("NEXTBEST_CONFIG_PATH", path)
	t.Setenv("NEXTBEST_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want env 9191", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want YAML warn", cfg.Log.Level)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("NEXTBEST_LOG_LEVEL", "error")

	envPath := writeFile(t, "test.env", "NEXTBEST_DB_PATH=/from/dotenv.db\nNEXTBEST_LOG_LEVEL=debug\n")
	t.Setenv("NEXTBEST_ENV_FILE", envPath)
	// godotenv sets this one for the process; make sure it does not leak
	t.Cleanup(func() { os.Unsetenv("NEXTBEST_DB_PATH") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/from/dotenv.db" {
		t.Errorf("Database.Path = %q, want value from .env", cfg.Database.Path)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want existing env to win over .env", cfg.Log.Level)
	}
}

func TestLoad_MissingConfigFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("NEXTBEST_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeFile(t, "bad.yaml", "server: [unclosed")
	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("LoadFromFile() should fail on invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %q, want parsing context", err.Error())
	}
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeFile(t, "bad.yaml", "worker:\n  persist_timeout: eventually\n")
	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("LoadFromFile() should fail on invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %q, want invalid duration", err.Error())
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadFromFile() should fail for a missing file")
	}
}

// Test: Secrets never round-trip through YAML
func TestConfig_SecretsNotInYAML(t *testing.T) {
	cfg := newDefaults()
	cfg.Auth.APIKey = "super-secret"
	cfg.DevMode = true

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if strings.Contains(string(out), "super-secret") {
		t.Error("API key leaked into YAML output")
	}
	if strings.Contains(string(out), "dev_mode") || strings.Contains(string(out), "devmode") {
		t.Error("dev mode leaked into YAML output")
	}
	if !strings.Contains(string(out), "persist_timeout: 5s") {
		t.Errorf("durations should marshal as strings, got:\n%s", out)
	}
}

func TestLoadLocal_NoAPIKeyRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXTBEST_DB_PATH", "/tmp/local.db")

	cfg, err := LoadLocal()
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/local.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestLoadLocal_StillValidatesSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXTBEST_PORT", "0")

	if _, err := LoadLocal(); err == nil {
		t.Error("LoadLocal() error = nil, want invalid port")
	}
}
