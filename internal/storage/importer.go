/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNotText is returned when an imported file is not valid UTF-8.
var ErrNotText = errors.New("storage: import is not UTF-8 text")

// maxImportBytes caps imported files.
const maxImportBytes = 8 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportFile reads a script from path. See ImportReader.
func ImportFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return ImportReader(filepath.Base(path), f)
}

// ImportReader reads script text from r. The UTF-8 BOM is dropped and CRLF/CR line endings become LF.
// For Markdown names (.md, .markdown) the first fenced code block is returned, preferring one tagged
// fountain; without fenced blocks the whole document is returned.
func ImportReader(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxImportBytes {
		return "", fmt.Errorf("storage: import %s exceeds %d bytes", name, maxImportBytes)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotText, name)
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))

	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		if block, ok := fencedScript(data); ok {
			return block, nil
		}
	}
	return string(data), nil
}

// fencedScript returns the contents of the first fenced code block whose info is "fountain",
// or of the first fenced block when none is tagged.
func fencedScript(src []byte) (string, bool) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var first, tagged *ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if first == nil {
			first = fb
		}
		if strings.EqualFold(string(fb.Language(src)), "fountain") {
			tagged = fb
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	pick := tagged
	if pick == nil {
		pick = first
	}
	if pick == nil {
		return "", false
	}
	var b strings.Builder
	lines := pick.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String(), true
}
