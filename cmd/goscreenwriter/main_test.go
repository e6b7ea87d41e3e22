/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goscreenwriter/internal/config"
)

const sampleScript = `INT. KITCHEN - NIGHT

MARY
Where were you?

JOHN (V.O.)
(quietly)
Out.

EXT. STREET - DAY

Rain falls.
`

// run executes the CLI with an isolated config and data directory.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&state{})
	root.Reader = strings.NewReader(stdin)
	root.Writer = &out
	root.ErrWriter = &errOut
	err := root.Run(context.Background(), append([]string{"goscreenwriter"}, args...))
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvStorageDriver, "")
	t.Setenv(config.EnvStorageSlot, "")
	return dir
}

func writeScript(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "pilot.fountain")
	require.NoError(t, os.WriteFile(p, []byte(sampleScript), 0o644))
	return p
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Go Screenwriter "))
}

func TestCharactersFromStdin(t *testing.T) {
	isolate(t)
	out, err := run(t, sampleScript, "characters")
	require.NoError(t, err)
	assert.Equal(t, "JOHN\nMARY\n", out)
}

func TestScenesListsHeadingsWithLines(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "", "scenes", writeScript(t, dir))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  1  INT. KITCHEN - NIGHT"))
	assert.True(t, strings.HasSuffix(lines[0], "line 1"))
	assert.True(t, strings.HasPrefix(lines[1], "  2  EXT. STREET - DAY"))
}

func TestStatsJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, sampleScript, "stats", "--json")
	require.NoError(t, err)

	var got struct {
		Words      int    `json:"words"`
		Scenes     int    `json:"scenes"`
		Characters int    `json:"characters"`
		Strategy   string `json:"strategy"`
		Degraded   bool   `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Scenes)
	assert.Equal(t, 2, got.Characters)
	assert.Equal(t, "fountain", got.Strategy)
	assert.False(t, got.Degraded)
	assert.Positive(t, got.Words)
}

func TestStatsReportsFallback(t *testing.T) {
	isolate(t)
	out, err := run(t, "MARY\nHi.\n/* never closed\n", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "parser: lines")
	assert.Contains(t, out, "warning:")
}

func TestPreviewHTML(t *testing.T) {
	isolate(t)
	out, err := run(t, sampleScript, "preview", "--output", "html", "--title", "Pilot")
	require.NoError(t, err)
	assert.Contains(t, out, `class="title-page"`)
	assert.Contains(t, out, `class="scene-heading"`)
	assert.Contains(t, out, "MARY")
}

func TestPreviewTerminal(t *testing.T) {
	isolate(t)
	out, err := run(t, sampleScript, "preview", "--width", "60", "--title", "Pilot")
	require.NoError(t, err)
	assert.Contains(t, out, "PILOT")
	assert.Contains(t, out, "2 scenes")
}

func TestPreviewRejectsUnknownOutput(t *testing.T) {
	isolate(t)
	_, err := run(t, sampleScript, "preview", "-o", "rtf")
	require.Error(t, err)
}

func TestImportThenDraft(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir)

	out, err := run(t, "", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"pilot"`)

	out, err = run(t, "", "draft")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Title: pilot\n\n"))
	assert.Contains(t, out, "INT. KITCHEN - NIGHT")

	out, err = run(t, "", "draft", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pilot")

	out, err = run(t, "", "characters", "--draft")
	require.NoError(t, err)
	assert.Equal(t, "JOHN\nMARY\n", out)
}

func TestDraftEmptySlot(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "draft", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "no draft saved")

	_, err = run(t, "", "scenes", "--draft")
	require.Error(t, err)
}

func TestDraftPrune(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir)
	for i := 0; i < 3; i++ {
		_, err := run(t, "", "import", path)
		require.NoError(t, err)
	}
	out, err := run(t, "", "draft", "prune", "--keep", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted 2 versions\n", out)
}

func TestExportFormats(t *testing.T) {
	dir := isolate(t)
	outDir := filepath.Join(dir, "out")
	out, err := run(t, "", "export", "--format", "json,html", "--format", "fountain", "--out", outDir, "--title", "Pilot", writeScript(t, dir))
	require.NoError(t, err)

	for _, name := range []string{"Pilot.json", "Pilot.html", "Pilot.fountain"} {
		assert.Contains(t, out, name)
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	src, err := os.ReadFile(filepath.Join(outDir, "Pilot.fountain"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "Title: Pilot\n\n"))
}

func TestExportPreset(t *testing.T) {
	dir := isolate(t)
	outDir := filepath.Join(dir, "out")
	_, err := run(t, sampleScript, "export", "--preset", "archive", "--out", outDir)
	require.NoError(t, err)
	for _, name := range []string{"Screenplay.fountain", "Screenplay.md", "Screenplay.json"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
}

func TestExportUnknownFormat(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, sampleScript, "export", "--format", "docx", "--out", dir)
	require.Error(t, err)
}

func TestMalformedConfigFails(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage: [\n"), 0o644))
	_, err := run(t, sampleScript, "--config", cfgPath, "characters")
	require.Error(t, err)
}
