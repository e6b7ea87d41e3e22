/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export turns a saved draft into downloadable artifacts: Fountain and plain text sources,
// Markdown, a printable HTML page, a Courier PDF and a JSON dump of the interpreted document.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
)

// Format names an export target.
type Format string

const (
	FormatFountain Format = "fountain"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned for format names ParseFormat does not recognize.
var ErrUnknownFormat = errors.New("export: unknown format")

// Formats lists every supported format in menu order.
func Formats() []Format {
	return []Format{FormatFountain, FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatJSON}
}

// ParseFormat accepts a format name or file extension, case-insensitively, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch v {
	case "fountain", "spmd":
		return FormatFountain, nil
	case "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension without the dot.
func (f Format) Ext() string { return string(f) }

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options controls how drafts are interpreted for the rendered formats.
type Options struct {
	// Pipeline interprets the script; nil uses screenplay.DefaultPipeline.
	Pipeline *screenplay.Pipeline
	// PDF tweaks the PDF layout; zero values use defaults.
	PDF PDFOptions
}

// Artifact is one exported file held in memory.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders d in the given format.
func Export(format Format, d storage.Draft, opts Options) (Artifact, error) {
	art := Artifact{
		Filename:    Slugify(d.Title) + "." + format.Ext(),
		ContentType: format.ContentType(),
	}
	var err error
	switch format {
	case FormatFountain, FormatText:
		art.Data = []byte(fountainSource(d))
	case FormatMarkdown:
		art.Data = []byte(markdownSource(d))
	case FormatHTML:
		art.Data, err = htmlPage(interpret(d, opts), d)
	case FormatPDF:
		art.Data, err = pdfBytes(interpret(d, opts), d, opts.PDF)
	case FormatJSON:
		art.Data, err = jsonDocument(interpret(d, opts), d)
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("export %s: %w", format, err)
	}
	return art, nil
}

type interpreted struct {
	source string
	doc    *screenplay.Document
}

func interpret(d storage.Draft, opts Options) interpreted {
	p := opts.Pipeline
	if p == nil {
		p = screenplay.DefaultPipeline()
	}
	src := screenplay.BuildSource(d.Title, d.Body)
	return interpreted{source: src, doc: p.Interpret(src)}
}

var reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// DefaultTitle stands in for a blank title in file names and documents.
const DefaultTitle = "Screenplay"

// Slugify makes a title safe to use as a file name stem. Blank titles become DefaultTitle.
func Slugify(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return DefaultTitle
	}
	return reUnsafeName.ReplaceAllString(t, "-")
}

// displayTitle is the title shown inside documents.
func displayTitle(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return DefaultTitle
}
