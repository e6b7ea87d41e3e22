/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goscreenwriter/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetShare   PresetName = "share"
	PresetArchive PresetName = "archive"
	PresetAll     PresetName = "all"
)

// BatchOptions controls writing several formats of one draft at once.
//
// Files are named <slug>.<ext> inside OutDir (default: the current directory).
// Existing files are overwritten.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // empty means preset defaults
	OutDir  string
	Export  Options
}

// BatchExport writes the draft in every requested format and returns the written paths.
func BatchExport(d storage.Draft, opt BatchOptions) ([]string, error) {
	formats, err := batchFormats(opt)
	if err != nil {
		return nil, err
	}
	outDir := opt.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		art, err := Export(f, d, opt.Export)
		if err != nil {
			return paths, err
		}
		p := filepath.Join(outDir, art.Filename)
		if err := os.WriteFile(p, art.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func batchFormats(opt BatchOptions) ([]Format, error) {
	if len(opt.Formats) == 0 {
		return presetDefaultFormats(opt.Preset)
	}
	seen := map[Format]bool{}
	out := make([]Format, 0, len(opt.Formats))
	for _, s := range opt.Formats {
		f, err := ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) ([]Format, error) {
	switch PresetName(strings.ToLower(string(p))) {
	case "", PresetShare:
		return []Format{FormatPDF, FormatHTML}, nil
	case PresetArchive:
		return []Format{FormatFountain, FormatMarkdown, FormatJSON}, nil
	case PresetAll:
		return Formats(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q", p)
	}
}
