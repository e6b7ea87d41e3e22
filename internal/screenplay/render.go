/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"html"
	"strings"
)

// Render turns elements into the preview HTML fragment.
// Each element becomes one container whose class names its kind; Empty becomes a bare <br>.
// Text is escaped, so the fragment is safe to inject into the preview surface.
func Render(elements []Element) string {
	var b strings.Builder
	b.Grow(64 + 48*len(elements))
	b.WriteString(`<div class="screenplay-preview">`)
	for _, el := range elements {
		writeElement(&b, el)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// RenderDocument renders the title page (if any) followed by the script body.
func RenderDocument(doc *Document) string {
	if doc == nil {
		return Render(nil)
	}
	return RenderTitlePage(doc.TitlePage) + Render(doc.Elements)
}

// RenderTitlePage renders title page fields as a definition-like block; no fields renders nothing.
func RenderTitlePage(fields []TitleField) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="title-page">`)
	for _, f := range fields {
		key := strings.ToLower(strings.Join(strings.Fields(f.Key), "-"))
		b.WriteString(`<p class="`)
		b.WriteString(html.EscapeString(key))
		b.WriteString(`">`)
		writeMultiline(&b, f.Value)
		b.WriteString(`</p>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func writeElement(b *strings.Builder, el Element) {
	class := el.Kind.CSSClass()
	if class == "" {
		b.WriteString(`<br>`)
		return
	}
	if el.Centered {
		class += " centered"
	}
	text := el.Display
	if text == "" {
		text = el.Text
	}
	b.WriteString(`<div class="`)
	b.WriteString(class)
	b.WriteString(`">`)
	writeMultiline(b, text)
	b.WriteString(`</div>`)
}

func writeMultiline(b *strings.Builder, s string) {
	for i, part := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteString(`<br>`)
		}
		b.WriteString(html.EscapeString(part))
	}
}
