package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glabrego/photowall-cli/internal/grid"
)

var allVars = []string{
	"PHOTOWALL_API_BASE_URL",
	"PHOTOWALL_IMAGE_BASE_URL",
	"PHOTOWALL_DB_PATH",
	"PHOTOWALL_LOG_PATH",
	"PHOTOWALL_LOG_LEVEL",
	"PHOTOWALL_CONFIG_FILE",
	"PHOTOWALL_MAX_CONCURRENT",
	"PHOTOWALL_PIXEL_SCALE",
	"PHOTOWALL_FPS",
	"PHOTOWALL_MIN_ZOOM",
	"PHOTOWALL_MAX_ZOOM",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, "")
	}
}

func TestLoadFromEnv_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}

	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected API base URL: %s", cfg.APIBaseURL)
	}
	if cfg.ImageBaseURL != defaultImageBaseURL {
		t.Fatalf("unexpected image base URL: %s", cfg.ImageBaseURL)
	}
	if cfg.DBPath != "photowall.db" || cfg.LogPath != "photowall.log" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.MaxConcurrent != 6 || cfg.PixelScale != 8 || cfg.FPS != 30 {
		t.Fatalf("unexpected tuning: %+v", cfg)
	}
	if cfg.Layout != grid.DefaultLayout() {
		t.Fatalf("unexpected layout: %+v", cfg.Layout)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHOTOWALL_API_BASE_URL", "http://api.test")
	t.Setenv("PHOTOWALL_MAX_CONCURRENT", "3")
	t.Setenv("PHOTOWALL_MIN_ZOOM", "1.5")
	t.Setenv("PHOTOWALL_MAX_ZOOM", "12")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://api.test" || cfg.MaxConcurrent != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Layout.MinZoom != 1.5 || cfg.Layout.MaxZoom != 12 {
		t.Fatalf("unexpected zoom range: %+v", cfg.Layout)
	}
}

func TestLoadFromEnv_RejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHOTOWALL_FPS", "fast")

	_, err := LoadFromEnv()
	if err == nil || !strings.Contains(err.Error(), "PHOTOWALL_FPS") {
		t.Fatalf("expected error naming PHOTOWALL_FPS, got %v", err)
	}
}

func TestLoadFromEnv_RejectsNonFiniteZoom(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-inf"} {
		clearEnv(t)
		t.Setenv("PHOTOWALL_MIN_ZOOM", raw)
		_, err := LoadFromEnv()
		if err == nil || !strings.Contains(err.Error(), "PHOTOWALL_MIN_ZOOM") {
			t.Fatalf("%s: expected error naming PHOTOWALL_MIN_ZOOM, got %v", raw, err)
		}
	}
}

func TestLoadFromEnv_YAMLOverlayLosesToEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "photowall.yaml")
	data := "max_concurrent: 4\nfps: 24\nlayout:\n  cols: 50\n  rows: 40\n  label_zoom: 6\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PHOTOWALL_CONFIG_FILE", path)
	t.Setenv("PHOTOWALL_FPS", "60")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}
	if cfg.MaxConcurrent != 4 || cfg.FPS != 60 {
		t.Fatalf("unexpected tuning: %+v", cfg)
	}
	if cfg.Layout.Cols != 50 || cfg.Layout.Rows != 40 || cfg.Layout.LabelZoom != 6 || cfg.Layout.CellSize != grid.BaseCellSize {
		t.Fatalf("unexpected layout: %+v", cfg.Layout)
	}
}

func TestLoadFromEnv_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHOTOWALL_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		APIBaseURL:    "http://localhost:8080",
		ImageBaseURL:  "https://img.example.com",
		DBPath:        "photowall.db",
		LogPath:       "photowall.log",
		LogLevel:      "info",
		MaxConcurrent: 6,
		PixelScale:    8,
		FPS:           30,
		Layout:        grid.DefaultLayout(),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"api trailing slash":   func(c *Config) { c.APIBaseURL += "/" },
		"image trailing slash": func(c *Config) { c.ImageBaseURL += "/" },
		"log level":            func(c *Config) { c.LogLevel = "loud" },
		"zero concurrency":     func(c *Config) { c.MaxConcurrent = 0 },
		"pixel scale":          func(c *Config) { c.PixelScale = 64 },
		"fps":                  func(c *Config) { c.FPS = 0 },
		"zoom order":           func(c *Config) { c.Layout.MaxZoom = 1 },
		"empty layout":         func(c *Config) { c.Layout.Cols = 0 },
		"nan min zoom":         func(c *Config) { c.Layout.MinZoom = math.NaN() },
		"inf max zoom":         func(c *Config) { c.Layout.MaxZoom = math.Inf(1) },
		"nan label zoom":       func(c *Config) { c.Layout.LabelZoom = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PHOTOWALL_DB_PATH=from-dotenv.db\nPHOTOWALL_LOG_PATH=dotenv.log\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("PHOTOWALL_LOG_PATH=local.log\n"), 0o600); err != nil {
		t.Fatalf("write .env.local: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("PHOTOWALL_DB_PATH", "from-env.db")
	t.Setenv("PHOTOWALL_LOG_PATH", "")
	os.Unsetenv("PHOTOWALL_LOG_PATH")

	loaded := LoadDotEnv()
	if len(loaded) != 2 {
		t.Fatalf("expected both files loaded, got %v", loaded)
	}
	if got := os.Getenv("PHOTOWALL_DB_PATH"); got != "from-env.db" {
		t.Fatalf("expected process env to win, got %s", got)
	}
	if got := os.Getenv("PHOTOWALL_LOG_PATH"); got != "local.log" {
		t.Fatalf("expected .env.local to win over .env, got %s", got)
	}
}
