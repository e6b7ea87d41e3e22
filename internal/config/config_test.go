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
	"os"
	"path/filepath"
	"testing"
	"time"

	"goscreenwriter/internal/screenplay"
)

func TestEnvOverridesStorage(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(EnvStorageDriver, "Postgres")
	t.Setenv(EnvStorageDSN, "postgres://u:p@localhost/gsw")
	t.Setenv(EnvStorageSlot, "draft_two")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://u:p@localhost/gsw" || cfg.Storage.Slot != "draft_two" {
		t.Fatalf("storage overrides not applied: %#v", cfg.Storage)
	}
}

func TestEnvOverridesClassifier(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(EnvDialogueIndent, "4")
	t.Setenv(EnvMaxCueLength, "0")
	t.Setenv(EnvRichParser, "off")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Classifier.DialogueIndent != 4 || cfg.Classifier.MaxCueLength != 0 || cfg.Classifier.RichParser {
		t.Fatalf("classifier overrides not applied: %#v", cfg.Classifier)
	}
}

func TestEnvIgnoresBadNumbers(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(EnvDialogueIndent, "wide")
	t.Setenv(EnvMaxCueLength, "-3")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Classifier.DialogueIndent != screenplay.DefaultDialogueIndent || cfg.Classifier.MaxCueLength != screenplay.DefaultMaxCueLength {
		t.Fatalf("bad numbers should leave defaults: %#v", cfg.Classifier)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gsw.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gsw.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/tmp/gsw.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/tmp/gsw.log" {
		t.Fatalf("env overrides for logging not applied: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("logging.level"); !ok || env != EnvLogLevel {
		t.Fatalf("EnvOverrideFor(logging.level) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("server.addr"); ok {
		t.Fatalf("server.addr should not report an override")
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "classifier:\n  dialogue_indent: 6\nserver:\n  addr: \":9000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Classifier.DialogueIndent != 6 {
		t.Fatalf("dialogue_indent = %d, want 6", cfg.Classifier.DialogueIndent)
	}
	if !cfg.Classifier.TransitionSuffix || !cfg.Classifier.RichParser {
		t.Fatalf("absent bool keys lost their defaults: %#v", cfg.Classifier)
	}
	if cfg.Server.Addr != ":9000" || cfg.Storage.Slot != DefaultSlot {
		t.Fatalf("unexpected merge result: %#v", cfg)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("classifier: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err == nil {
		t.Fatalf("expected YAML error")
	}
	if cfg.Storage.Slot != DefaultSlot {
		t.Fatalf("defaults should still be returned on error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(EnvConfigPath, path)
	cfg := Defaults()
	cfg.General.Theme = "light"
	cfg.Classifier.TransitionSuffix = false
	cfg.Storage.KeepSnapshots = 5
	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.General.Theme != "light" || got.Classifier.TransitionSuffix || got.Storage.KeepSnapshots != 5 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestScreenplayConfigMapping(t *testing.T) {
	c := ClassifierConfig{DialogueIndent: 0, MaxCueLength: 0, TransitionSuffix: false}
	sc := c.ScreenplayConfig()
	if sc.DialogueIndent != screenplay.DefaultDialogueIndent {
		t.Fatalf("DialogueIndent = %d, want default", sc.DialogueIndent)
	}
	if sc.MaxCueLength != 0 || sc.TransitionSuffix {
		t.Fatalf("unexpected mapping: %#v", sc)
	}
	if got := c.Pipeline().Interpret("INT. HOUSE - DAY").Strategy; got != "lines" {
		t.Fatalf("rich parser disabled, strategy = %q", got)
	}
	c.RichParser = true
	if got := c.Pipeline().Interpret("INT. HOUSE - DAY").Strategy; got != "fountain" {
		t.Fatalf("rich parser enabled, strategy = %q", got)
	}
}

func TestAutosaveDelay(t *testing.T) {
	if got := (StorageConfig{}).AutosaveDelay(); got != 300*time.Millisecond {
		t.Fatalf("default delay = %v", got)
	}
	if got := (StorageConfig{AutosaveMs: 50}).AutosaveDelay(); got != 50*time.Millisecond {
		t.Fatalf("delay = %v", got)
	}
}
