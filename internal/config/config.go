package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/logging"
)

const (
	defaultAPIBaseURL   = "http://localhost:8080"
	defaultImageBaseURL = "https://izeus20.blob.core.windows.net/pixel-dog"
	defaultPixelScale   = 8
	defaultFPS          = 30
)

// Config holds runtime settings for the CLI app.
type Config struct {
	APIBaseURL    string
	ImageBaseURL  string
	DBPath        string
	LogPath       string
	LogLevel      string
	ConfigFile    string
	MaxConcurrent int
	PixelScale    int
	FPS           int
	Layout        grid.Layout
}

// fileConfig is the optional YAML overlay. Environment variables win over it.
type fileConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	PixelScale    int `yaml:"pixel_scale"`
	FPS           int `yaml:"fps"`
	Layout        struct {
		Cols         int     `yaml:"cols"`
		Rows         int     `yaml:"rows"`
		CellSize     float64 `yaml:"cell_size"`
		MinZoom      float64 `yaml:"min_zoom"`
		MaxZoom      float64 `yaml:"max_zoom"`
		GridLineZoom float64 `yaml:"grid_line_zoom"`
		LabelZoom    float64 `yaml:"label_zoom"`
	} `yaml:"layout"`
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL:    os.Getenv("PHOTOWALL_API_BASE_URL"),
		ImageBaseURL:  os.Getenv("PHOTOWALL_IMAGE_BASE_URL"),
		DBPath:        os.Getenv("PHOTOWALL_DB_PATH"),
		LogPath:       os.Getenv("PHOTOWALL_LOG_PATH"),
		LogLevel:      os.Getenv("PHOTOWALL_LOG_LEVEL"),
		ConfigFile:    os.Getenv("PHOTOWALL_CONFIG_FILE"),
		MaxConcurrent: grid.MaxConcurrent,
		PixelScale:    defaultPixelScale,
		FPS:           defaultFPS,
		Layout:        grid.DefaultLayout(),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "photowall.db"
	}
	if cfg.LogPath == "" {
		cfg.LogPath = "photowall.log"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PHOTOWALL_MAX_CONCURRENT", &cfg.MaxConcurrent},
		{"PHOTOWALL_PIXEL_SCALE", &cfg.PixelScale},
		{"PHOTOWALL_FPS", &cfg.FPS},
	}
	for _, v := range ints {
		if err := intFromEnv(v.name, v.dst); err != nil {
			return Config{}, err
		}
	}
	if err := floatFromEnv("PHOTOWALL_MIN_ZOOM", &cfg.Layout.MinZoom); err != nil {
		return Config{}, err
	}
	if err := floatFromEnv("PHOTOWALL_MAX_ZOOM", &cfg.Layout.MaxZoom); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read PHOTOWALL_CONFIG_FILE: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse PHOTOWALL_CONFIG_FILE %s: %w", path, err)
	}

	if fc.MaxConcurrent != 0 {
		c.MaxConcurrent = fc.MaxConcurrent
	}
	if fc.PixelScale != 0 {
		c.PixelScale = fc.PixelScale
	}
	if fc.FPS != 0 {
		c.FPS = fc.FPS
	}
	l := fc.Layout
	if l.Cols != 0 {
		c.Layout.Cols = l.Cols
	}
	if l.Rows != 0 {
		c.Layout.Rows = l.Rows
	}
	if l.CellSize != 0 {
		c.Layout.CellSize = l.CellSize
	}
	if l.MinZoom != 0 {
		c.Layout.MinZoom = l.MinZoom
	}
	if l.MaxZoom != 0 {
		c.Layout.MaxZoom = l.MaxZoom
	}
	if l.GridLineZoom != 0 {
		c.Layout.GridLineZoom = l.GridLineZoom
	}
	if l.LabelZoom != 0 {
		c.Layout.LabelZoom = l.LabelZoom
	}
	return nil
}

func intFromEnv(name string, dst *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %s", name, raw)
	}
	*dst = v
	return nil
}

func floatFromEnv(name string, dst *float64) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return fmt.Errorf("%s must be a finite number: %s", name, raw)
	}
	*dst = v
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.ImageBaseURL == "" {
		return errors.New("ImageBaseURL is required")
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.LogPath == "" {
		return errors.New("LogPath is required")
	}
	if c.APIBaseURL[len(c.APIBaseURL)-1] == '/' {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	if c.ImageBaseURL[len(c.ImageBaseURL)-1] == '/' {
		return fmt.Errorf("ImageBaseURL must not end with '/': %s", c.ImageBaseURL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("PHOTOWALL_LOG_LEVEL: %w", err)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("PHOTOWALL_MAX_CONCURRENT must be at least 1: %d", c.MaxConcurrent)
	}
	if c.PixelScale < 1 || c.PixelScale > 32 {
		return fmt.Errorf("PHOTOWALL_PIXEL_SCALE must be between 1 and 32: %d", c.PixelScale)
	}
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("PHOTOWALL_FPS must be between 1 and 120: %d", c.FPS)
	}
	for name, v := range map[string]float64{
		"cell_size":      c.Layout.CellSize,
		"min_zoom":       c.Layout.MinZoom,
		"max_zoom":       c.Layout.MaxZoom,
		"grid_line_zoom": c.Layout.GridLineZoom,
		"label_zoom":     c.Layout.LabelZoom,
	} {
		if !finite(v) {
			return fmt.Errorf("layout %s must be a finite number: %v", name, v)
		}
	}
	if c.Layout.Cols < 1 || c.Layout.Rows < 1 || c.Layout.CellSize <= 0 {
		return fmt.Errorf("layout must have positive cols, rows and cell_size: %+v", c.Layout)
	}
	if c.Layout.MinZoom <= 0 {
		return fmt.Errorf("PHOTOWALL_MIN_ZOOM must be positive: %v", c.Layout.MinZoom)
	}
	if c.Layout.MaxZoom < c.Layout.MinZoom {
		return fmt.Errorf("PHOTOWALL_MAX_ZOOM (%v) must not be below PHOTOWALL_MIN_ZOOM (%v)", c.Layout.MaxZoom, c.Layout.MinZoom)
	}
	return nil
}
