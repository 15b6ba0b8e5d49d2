/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user
// config directory merged over Defaults, then PCM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is written into new config files.
const CurrentVersion = 1

type EditorConfig struct {
	Editable        bool    `yaml:"editable"`
	LayoutMode      string  `yaml:"layout_mode"` // "grid" | "absolute"
	CanvasWidth     float64 `yaml:"canvas_width"`
	CanvasHeight    float64 `yaml:"canvas_height"`
	GridSize        float64 `yaml:"grid_size"`
	CellSize        float64 `yaml:"cell_size"`
	Padding         float64 `yaml:"padding"`
	SnapThreshold   float64 `yaml:"snap_threshold"`
	MinSize         float64 `yaml:"min_size"`
	HistoryDepth    int     `yaml:"history_depth"`
	SanitizeContent bool    `yaml:"sanitize_content"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

type ExportConfig struct {
	Dir      string `yaml:"dir"`
	Markdown bool   `yaml:"markdown"`
	PDF      bool   `yaml:"pdf"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Editor: EditorConfig{
			Editable:      true,
			LayoutMode:    "grid",
			CanvasWidth:   1200,
			CanvasHeight:  800,
			GridSize:      10,
			CellSize:      20,
			Padding:       20,
			SnapThreshold: 5,
			MinSize:       20,
			HistoryDepth:  20,
		},
		Storage: StorageConfig{Backend: "file", Key: "canvas-state"},
		Export:  ExportConfig{Dir: "exports"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Environment overrides.
const (
	EnvConfigPath    = "PCM_CONFIG"
	EnvEditable      = "PCM_EDITABLE"
	EnvLayoutMode    = "PCM_LAYOUT_MODE"
	EnvGridSize      = "PCM_GRID_SIZE"
	EnvSnapThreshold = "PCM_SNAP_THRESHOLD"
	EnvHistoryDepth  = "PCM_HISTORY_DEPTH"
	EnvStoreBackend  = "PCM_STORE_BACKEND"
	EnvStorePath     = "PCM_STORE_PATH"
	EnvExportDir     = "PCM_EXPORT_DIR"
	EnvLogLevel      = "PCM_LOG_LEVEL"
	EnvLogFormat     = "PCM_LOG_FORMAT"
	EnvLogSource     = "PCM_LOG_SOURCE"
	EnvLogFile       = "PCM_LOG_FILE"
)

// overrides maps dotted config keys to their env var and a setter.
var overrides = []struct {
	key string
	env string
	set func(*AppConfig, string) error
}{
	{"editor.editable", EnvEditable, func(c *AppConfig, v string) error { c.Editor.Editable = truthy(v); return nil }},
	{"editor.layout_mode", EnvLayoutMode, func(c *AppConfig, v string) error { c.Editor.LayoutMode = strings.ToLower(v); return nil }},
	{"editor.grid_size", EnvGridSize, func(c *AppConfig, v string) error { return setFloat(&c.Editor.GridSize, v) }},
	{"editor.snap_threshold", EnvSnapThreshold, func(c *AppConfig, v string) error { return setFloat(&c.Editor.SnapThreshold, v) }},
	{"editor.history_depth", EnvHistoryDepth, func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			c.Editor.HistoryDepth = n
		}
		return err
	}},
	{"storage.backend", EnvStoreBackend, func(c *AppConfig, v string) error { c.Storage.Backend = strings.ToLower(v); return nil }},
	{"storage.path", EnvStorePath, func(c *AppConfig, v string) error { c.Storage.Path = v; return nil }},
	{"export.dir", EnvExportDir, func(c *AppConfig, v string) error { c.Export.Dir = v; return nil }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) error { c.Logging.Level = strings.ToLower(v); return nil }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) error { c.Logging.Format = strings.ToLower(v); return nil }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) error { c.Logging.Source = truthy(v); return nil }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) error { c.Logging.File = v; return nil }},
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err == nil {
		*dst = f
	}
	return err
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageComposer")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageComposer")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "pagecomposer")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "pagecomposer")
		}
	}
	if base == "" || base == "pagecomposer" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the config file path; PCM_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path (ConfigPath when empty). A missing file
// yields the defaults; a malformed one is an error. Env overrides apply last.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, cfg.Validate()
}

// Save writes cfg as YAML to path (ConfigPath when empty).
func Save(path string, cfg AppConfig) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// mergeInto copies non-zero file values over dst. Booleans are taken from
// the file only when their key is present in raw.
func mergeInto(dst, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	present := presentKeys(raw)
	e, s := &dst.Editor, src.Editor
	if present["editor.editable"] {
		e.Editable = s.Editable
	}
	if present["editor.sanitize_content"] {
		e.SanitizeContent = s.SanitizeContent
	}
	if v := strings.TrimSpace(s.LayoutMode); v != "" {
		e.LayoutMode = strings.ToLower(v)
	}
	for _, f := range []struct{ dst, src *float64 }{
		{&e.CanvasWidth, &s.CanvasWidth}, {&e.CanvasHeight, &s.CanvasHeight},
		{&e.GridSize, &s.GridSize}, {&e.CellSize, &s.CellSize}, {&e.Padding, &s.Padding},
		{&e.SnapThreshold, &s.SnapThreshold}, {&e.MinSize, &s.MinSize},
	} {
		if *f.src != 0 {
			*f.dst = *f.src
		}
	}
	if s.HistoryDepth != 0 {
		e.HistoryDepth = s.HistoryDepth
	}
	if v := strings.TrimSpace(src.Storage.Backend); v != "" {
		dst.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Storage.Path); v != "" {
		dst.Storage.Path = v
	}
	if v := strings.TrimSpace(src.Storage.Key); v != "" {
		dst.Storage.Key = v
	}
	if v := strings.TrimSpace(src.Export.Dir); v != "" {
		dst.Export.Dir = v
	}
	dst.Export.Markdown = src.Export.Markdown
	dst.Export.PDF = src.Export.PDF
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

// presentKeys lists the dotted two-level keys set in a YAML document.
func presentKeys(raw []byte) map[string]bool {
	var doc map[string]any
	out := map[string]bool{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return out
	}
	for section, v := range doc {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k := range fields {
			out[section+"."+k] = true
		}
	}
	return out
}

func applyEnvOverrides(cfg *AppConfig) error {
	for _, o := range overrides {
		v := strings.TrimSpace(os.Getenv(o.env))
		if v == "" {
			continue
		}
		if err := o.set(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", o.env, err)
		}
	}
	return nil
}

// resolvePaths anchors relative storage and export paths at base and fills
// in the default store location.
func (c *AppConfig) resolvePaths(base string) {
	if c.Storage.Path == "" {
		name := "design.json"
		if c.Storage.Backend == "sqlite" {
			name = "design.db"
		}
		c.Storage.Path = name
	}
	if !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(base, c.Storage.Path)
	}
	if !filepath.IsAbs(c.Export.Dir) {
		c.Export.Dir = filepath.Join(base, c.Export.Dir)
	}
}

// Validate reports the first invalid setting.
func (c AppConfig) Validate() error {
	switch c.Editor.LayoutMode {
	case "grid", "absolute":
	default:
		return fmt.Errorf("editor.layout_mode: unknown mode %q", c.Editor.LayoutMode)
	}
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Editor.GridSize <= 0 || c.Editor.CellSize <= 0 {
		return errors.New("editor: grid_size and cell_size must be positive")
	}
	if c.Editor.HistoryDepth <= 0 {
		return errors.New("editor.history_depth must be positive")
	}
	if c.Editor.MinSize <= 0 {
		return errors.New("editor.min_size must be positive")
	}
	return nil
}

// EnvOverrideFor returns the env var pinning key, if any.
func EnvOverrideFor(key string) (string, bool) {
	for _, o := range overrides {
		if o.key == key && os.Getenv(o.env) != "" {
			return o.env, true
		}
	}
	return "", false
}
