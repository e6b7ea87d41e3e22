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
	"bytes"
	"embed"
	"html/template"

	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
	"goscreenwriter/internal/version"
)

//go:embed templates/*.html
var templates embed.FS

var pageTmpl = template.Must(template.ParseFS(templates, "templates/page.html"))

type pageData struct {
	Title    string
	Version  string
	Body     template.HTML
	Stats    screenplay.Stats
	Degraded bool
}

// htmlPage renders a standalone printable page around the preview fragment.
func htmlPage(in interpreted, d storage.Draft) ([]byte, error) {
	// The fragment escapes all script text.
	data := pageData{
		Title:    displayTitle(d.Title),
		Version:  version.Version,
		Body:     template.HTML(screenplay.RenderDocument(in.doc)),
		Stats:    screenplay.ComputeStats(in.source, in.doc.Elements),
		Degraded: in.doc.Degraded,
	}
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
