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
	"fmt"
	"strings"
)

// Kind is the semantic class of a screenplay element.
type Kind int

const (
	KindEmpty Kind = iota
	KindSceneHeading
	KindCharacter
	KindDialogue
	KindParenthetical
	KindTransition
	KindAction
)

var kindNames = [...]string{
	KindEmpty:         "empty",
	KindSceneHeading:  "scene_heading",
	KindCharacter:     "character",
	KindDialogue:      "dialogue",
	KindParenthetical: "parenthetical",
	KindTransition:    "transition",
	KindAction:        "action",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// CSSClass is the style class of the container rendered for k. Empty has none.
func (k Kind) CSSClass() string {
	switch k {
	case KindSceneHeading:
		return "scene-heading"
	case KindCharacter:
		return "character"
	case KindDialogue:
		return "dialogue"
	case KindParenthetical:
		return "parenthetical"
	case KindTransition:
		return "transition"
	case KindAction:
		return "action"
	default:
		return ""
	}
}

// MarshalText encodes the kind by name for JSON exports and API payloads.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	name := string(b)
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("screenplay: unknown element kind %q", name)
}

// Line is one physical line of source input.
// Index is 0-based.
type Line struct {
	Raw     string
	Trimmed string
	Indent  int // leading U+0020 count
	Index   int
}

// Element is one classified unit of the script.
//
// Text is the semantic payload: for Character it is the speaker name with any
// parenthetical extension removed. Display is what a preview shows, which for
// a cue keeps the extension ("JOHN (V.O.)").
// Line and EndLine are 0-based source line indexes; they differ only for
// elements a richer grammar assembled from several lines.
type Element struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	Display  string `json:"display"`
	Line     int    `json:"line"`
	EndLine  int    `json:"end_line"`
	Centered bool   `json:"centered,omitempty"`
}

// Scene is one entry of the scene registry.
type Scene struct {
	Heading string `json:"heading"`
	Number  int    `json:"number"` // 1-based
	Line    int    `json:"line"`
}

// TitleField is one "Key: value" entry from a title page.
type TitleField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Document is the result of interpreting a script.
type Document struct {
	Elements  []Element    `json:"elements"`
	TitlePage []TitleField `json:"title_page,omitempty"`
	// Strategy names the parser that produced Elements.
	Strategy string `json:"strategy"`
	// Degraded is set when a preferred strategy failed and a fallback produced the result.
	Degraded bool `json:"degraded"`
	// Err holds the failure of the preferred strategy, if any. Never fatal.
	Err error `json:"-"`
}

// Title returns the value of the first "Title" field of the title page.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	for _, f := range d.TitlePage {
		if strings.EqualFold(f.Key, "title") {
			return f.Value
		}
	}
	return ""
}
