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
	"strings"

	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
)

// fountainSource is the draft as a Fountain file: a Title page line, a blank line, then the body.
func fountainSource(d storage.Draft) string {
	s := screenplay.BuildSource(d.Title, d.Body)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// markdownSource wraps the body in a fenced fountain block under a level-one heading.
func markdownSource(d storage.Draft) string {
	fence := "```"
	// Lengthen the fence until no body line can close it.
	for strings.Contains(d.Body, fence) {
		fence += "`"
	}
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(displayTitle(d.Title))
	b.WriteString("\n\n")
	b.WriteString(fence)
	b.WriteString("fountain\n")
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence)
	b.WriteString("\n")
	return b.String()
}
