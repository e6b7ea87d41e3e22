/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package termview lays interpreted screenplay elements out in columns for the terminal.
package termview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"goscreenwriter/internal/screenplay"
)

const (
	// pageWidth is the text width of a screenplay page in Courier columns.
	pageWidth    = 60
	defaultWidth = 80
)

var (
	colorHeading    = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#93c5fd"}
	colorCharacter  = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim        = lipgloss.AdaptiveColor{Light: "#64748b", Dark: "#94a3b8"}
	colorTransition = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#c4b5fd"}

	styleHeading       = lipgloss.NewStyle().Foreground(colorHeading).Bold(true)
	styleCharacter     = lipgloss.NewStyle().Foreground(colorCharacter).Bold(true)
	styleDialogue      = lipgloss.NewStyle()
	styleParenthetical = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleTransition    = lipgloss.NewStyle().Foreground(colorTransition)
	styleAction        = lipgloss.NewStyle()
	styleMeta          = lipgloss.NewStyle().Foreground(colorDim)
)

// column is the band an element kind occupies on a 60-column page.
type column struct {
	offset, width int
}

var columns = map[screenplay.Kind]column{
	screenplay.KindSceneHeading:  {0, 60},
	screenplay.KindCharacter:     {22, 38},
	screenplay.KindDialogue:      {10, 35},
	screenplay.KindParenthetical: {16, 25},
	screenplay.KindTransition:    {0, 60},
	screenplay.KindAction:        {0, 60},
}

// layout scales the page columns down when width is narrower than a page.
func layout(k screenplay.Kind, width int) (offset, w int) {
	c := columns[k]
	if width >= pageWidth {
		return c.offset, c.width
	}
	offset = c.offset * width / pageWidth
	w = c.width * width / pageWidth
	if w < 1 {
		w = 1
	}
	return offset, w
}

// Render lays elements out for a terminal of the given width. Widths below 20 are raised to 20.
func Render(elements []screenplay.Element, width int) string {
	if width < 20 {
		width = 20
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		out = append(out, renderElement(el, width))
	}
	return strings.Join(out, "\n")
}

func renderElement(el screenplay.Element, width int) string {
	if el.Kind == screenplay.KindEmpty {
		return ""
	}
	text := el.Display
	if text == "" {
		text = el.Text
	}
	offset, w := layout(el.Kind, width)
	var st lipgloss.Style
	switch el.Kind {
	case screenplay.KindSceneHeading:
		st = styleHeading
		text = strings.ToUpper(text)
	case screenplay.KindCharacter:
		st = styleCharacter
	case screenplay.KindDialogue:
		st = styleDialogue
	case screenplay.KindParenthetical:
		st = styleParenthetical
	case screenplay.KindTransition:
		st = styleTransition.Align(lipgloss.Right)
	default:
		st = styleAction
	}
	if el.Centered {
		st = st.Align(lipgloss.Center)
	}
	return st.Width(w).MarginLeft(offset).Render(text)
}

// Renderer writes whole documents to a terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// Write renders doc with a title line and a stats footer.
func (r *Renderer) Write(w io.Writer, doc *screenplay.Document, source string) error {
	width := r.termWidth()
	if t := doc.Title(); t != "" {
		if _, err := fmt.Fprintln(w, styleHeading.Width(min(width, pageWidth)).Align(lipgloss.Center).Render(strings.ToUpper(t))); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, Render(doc.Elements, width)); err != nil {
		return err
	}
	stats := screenplay.ComputeStats(source, doc.Elements)
	meta := fmt.Sprintf("%s · %d scenes · %d characters · %s", stats.Summary(), stats.Scenes, stats.Characters, doc.Strategy)
	if doc.Degraded {
		meta += " (fallback)"
	}
	_, err := fmt.Fprintln(w, "\n"+styleMeta.Render(meta))
	return err
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
