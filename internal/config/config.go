/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"goscreenwriter/internal/screenplay"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	Theme   string `yaml:"theme"` // "dark" | "light"
	DataDir string `yaml:"data_dir"`
}

type ClassifierConfig struct {
	DialogueIndent   int  `yaml:"dialogue_indent"`
	MaxCueLength     int  `yaml:"max_cue_length"`
	TransitionSuffix bool `yaml:"transition_suffix"`
	// RichParser enables the Fountain grammar ahead of the line classifier.
	RichParser bool `yaml:"rich_parser"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"` // "sqlite" | "postgres"
	DSN           string `yaml:"dsn"`
	Slot          string `yaml:"slot"`
	AutosaveMs    int    `yaml:"autosave_ms"`
	KeepSnapshots int    `yaml:"keep_snapshots"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	General       GeneralConfig    `yaml:"general"`
	Classifier    ClassifierConfig `yaml:"classifier"`
	Storage       StorageConfig    `yaml:"storage"`
	Server        ServerConfig     `yaml:"server"`
	Logging       LoggingConfig    `yaml:"logging"`
}

// DefaultSlot is the draft slot used when none is configured.
const DefaultSlot = "screenplay_writer_v1"

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "dark", DataDir: defaultDataDir()},
		Classifier: ClassifierConfig{
			DialogueIndent:   screenplay.DefaultDialogueIndent,
			MaxCueLength:     screenplay.DefaultMaxCueLength,
			TransitionSuffix: true,
			RichParser:       true,
		},
		Storage: StorageConfig{Driver: "sqlite", Slot: DefaultSlot, AutosaveMs: 300, KeepSnapshots: 50},
		Server:  ServerConfig{Addr: "127.0.0.1:8765"},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "GSW_CONFIG"
	EnvDataDir        = "GSW_DATA_DIR"
	EnvDialogueIndent = "GSW_DIALOGUE_INDENT"
	EnvMaxCueLength   = "GSW_MAX_CUE_LENGTH"
	EnvRichParser     = "GSW_RICH_PARSER"
	EnvStorageDriver  = "GSW_STORAGE_DRIVER"
	EnvStorageDSN     = "GSW_STORAGE_DSN"
	EnvStorageSlot    = "GSW_STORAGE_SLOT"
	EnvServerAddr     = "GSW_SERVER_ADDR"
	EnvLogLevel       = "GSW_LOG_LEVEL"
	EnvLogFormat      = "GSW_LOG_FORMAT"
	EnvLogSource      = "GSW_LOG_SOURCE"
	EnvLogFile        = "GSW_LOG_FILE"
)

func defaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("LocalAppData"); base != "" {
			return filepath.Join(base, "GoScreenwriter")
		}
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", "GoScreenwriter")
		}
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "goscreenwriter")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "goscreenwriter")
	}
	return filepath.Join(os.TempDir(), "goscreenwriter")
}

// ConfigPath returns the per-user config file path. GSW_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoScreenwriter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoScreenwriter")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "goscreenwriter")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file is not an error; malformed YAML is.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Pre-seed with defaults so absent keys keep their default values.
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, err
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.Theme); s != "" {
		dst.General.Theme = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.General.DataDir); s != "" {
		dst.General.DataDir = s
	}
	// classifier
	if src.Classifier.DialogueIndent > 0 {
		dst.Classifier.DialogueIndent = src.Classifier.DialogueIndent
	}
	if src.Classifier.MaxCueLength != 0 {
		dst.Classifier.MaxCueLength = src.Classifier.MaxCueLength
	}
	dst.Classifier.TransitionSuffix = src.Classifier.TransitionSuffix
	dst.Classifier.RichParser = src.Classifier.RichParser
	// storage
	if s := strings.TrimSpace(src.Storage.Driver); s != "" {
		dst.Storage.Driver = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Storage.DSN); s != "" {
		dst.Storage.DSN = s
	}
	if s := strings.TrimSpace(src.Storage.Slot); s != "" {
		dst.Storage.Slot = s
	}
	if src.Storage.AutosaveMs > 0 {
		dst.Storage.AutosaveMs = src.Storage.AutosaveMs
	}
	if src.Storage.KeepSnapshots != 0 {
		dst.Storage.KeepSnapshots = src.Storage.KeepSnapshots
	}
	if s := strings.TrimSpace(src.Server.Addr); s != "" {
		dst.Server.Addr = s
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDialogueIndent)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Classifier.DialogueIndent = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxCueLength)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Classifier.MaxCueLength = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRichParser)); v != "" {
		cfg.Classifier.RichParser = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageSlot)); v != "" {
		cfg.Storage.Slot = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"general.data_dir":           EnvDataDir,
		"classifier.dialogue_indent": EnvDialogueIndent,
		"classifier.max_cue_length":  EnvMaxCueLength,
		"classifier.rich_parser":     EnvRichParser,
		"storage.driver":             EnvStorageDriver,
		"storage.dsn":                EnvStorageDSN,
		"storage.slot":               EnvStorageSlot,
		"server.addr":                EnvServerAddr,
		"logging.level":              EnvLogLevel,
		"logging.format":             EnvLogFormat,
		"logging.source":             EnvLogSource,
		"logging.file":               EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// ScreenplayConfig maps the classifier section onto the interpreter's heuristics.
func (c ClassifierConfig) ScreenplayConfig() screenplay.Config {
	cfg := screenplay.DefaultConfig()
	if c.DialogueIndent > 0 {
		cfg.DialogueIndent = c.DialogueIndent
	}
	if c.MaxCueLength >= 0 {
		cfg.MaxCueLength = c.MaxCueLength
	}
	cfg.TransitionSuffix = c.TransitionSuffix
	return cfg
}

// Pipeline builds the interpreter described by the classifier section.
func (c ClassifierConfig) Pipeline() *screenplay.Pipeline {
	fallback := screenplay.NewClassifier(c.ScreenplayConfig())
	if !c.RichParser {
		return screenplay.NewPipeline(fallback)
	}
	return screenplay.NewPipeline(fallback, screenplay.Fountain{})
}

// AutosaveDelay returns the autosave debounce, falling back to the default for non-positive values.
func (s StorageConfig) AutosaveDelay() time.Duration {
	if s.AutosaveMs <= 0 {
		return time.Duration(Defaults().Storage.AutosaveMs) * time.Millisecond
	}
	return time.Duration(s.AutosaveMs) * time.Millisecond
}
