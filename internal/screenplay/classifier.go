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
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultDialogueIndent is the number of leading spaces that marks a dialogue line.
	DefaultDialogueIndent = 8
	// DefaultMaxCueLength caps the rune length of a character cue; longer all-caps lines are action.
	DefaultMaxCueLength = 30
)

// DefaultScenePrefixes start a scene heading (matched against the uppercased trimmed line).
var DefaultScenePrefixes = []string{"INT.", "EXT.", "FADE IN:", "FADE OUT:", "CUT TO:"}

// Config holds the tunable heuristics of the line classifier.
type Config struct {
	// DialogueIndent is the minimum count of leading spaces for a dialogue line.
	DialogueIndent int
	// MaxCueLength is the inclusive rune ceiling for character cues. 0 disables it.
	MaxCueLength int
	// TransitionSuffix additionally treats any line ending in "TO:" as a heading.
	TransitionSuffix bool
	// ScenePrefixes override DefaultScenePrefixes when non-empty.
	ScenePrefixes []string
}

// DefaultConfig returns the reference heuristics.
func DefaultConfig() Config {
	return Config{
		DialogueIndent:   DefaultDialogueIndent,
		MaxCueLength:     DefaultMaxCueLength,
		TransitionSuffix: true,
		ScenePrefixes:    append([]string(nil), DefaultScenePrefixes...),
	}
}

// Classifier is the single-pass line classifier. The zero value is not usable; use NewClassifier.
type Classifier struct {
	cfg      Config
	prefixes []string
}

// NewClassifier returns a classifier for cfg. A negative DialogueIndent or MaxCueLength is treated as its default.
func NewClassifier(cfg Config) *Classifier {
	if cfg.DialogueIndent <= 0 {
		cfg.DialogueIndent = DefaultDialogueIndent
	}
	if cfg.MaxCueLength < 0 {
		cfg.MaxCueLength = DefaultMaxCueLength
	}
	prefixes := cfg.ScenePrefixes
	if len(prefixes) == 0 {
		prefixes = DefaultScenePrefixes
	}
	up := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			up = append(up, p)
		}
	}
	return &Classifier{cfg: cfg, prefixes: up}
}

// Config returns the effective configuration.
func (c *Classifier) Config() Config { return c.cfg }

// Name implements Strategy.
func (c *Classifier) Name() string { return "lines" }

// Parse implements Strategy. It never fails.
func (c *Classifier) Parse(text string) (*Document, error) {
	return &Document{Elements: c.Classify(text), Strategy: c.Name()}, nil
}

// Classify returns one element per input line, in input order.
func (c *Classifier) Classify(text string) []Element {
	lines := SplitLines(text)
	out := make([]Element, 0, len(lines))
	for _, ln := range lines {
		out = append(out, c.classifyLine(ln))
	}
	return out
}

func (c *Classifier) classifyLine(ln Line) Element {
	el := Element{Line: ln.Index, EndLine: ln.Index, Text: ln.Trimmed, Display: ln.Trimmed}
	if ln.Trimmed == "" {
		el.Kind = KindEmpty
		return el
	}
	upper := strings.ToUpper(ln.Trimmed)
	switch {
	case c.IsSceneHeading(upper):
		el.Kind = KindSceneHeading
	case c.isCue(ln.Trimmed, upper):
		el.Kind = KindCharacter
		el.Text = CharacterName(ln.Trimmed)
	case ln.Indent >= c.cfg.DialogueIndent:
		el.Kind = KindDialogue
	default:
		el.Kind = KindAction
	}
	return el
}

// IsSceneHeading reports whether upper (an uppercased, trimmed line) opens a scene or is a transition cue.
func (c *Classifier) IsSceneHeading(upper string) bool {
	for _, p := range c.prefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return c.cfg.TransitionSuffix && strings.HasSuffix(upper, "TO:")
}

// isCue: no lowercase letters, no period outside parenthetical extensions, within the length ceiling.
func (c *Classifier) isCue(trimmed, upper string) bool {
	if trimmed == "" || trimmed != upper || strings.Contains(CharacterName(trimmed), ".") {
		return false
	}
	return c.cfg.MaxCueLength == 0 || utf8.RuneCountInString(trimmed) <= c.cfg.MaxCueLength
}

// SplitLines breaks text into lines. "\r\n" is accepted; a final newline ends the last line
// rather than opening an empty one, and "" yields no lines.
func SplitLines(text string) []Line {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	lines := make([]Line, len(parts))
	for i, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		lines[i] = Line{
			Raw:     p,
			Trimmed: strings.TrimSpace(p),
			Indent:  len(p) - len(strings.TrimLeft(p, " ")),
			Index:   i,
		}
	}
	return lines
}

var reParenthetical = regexp.MustCompile(`\([^)]*(\)|$)`)

// CharacterName strips parenthetical extensions such as "(V.O.)" or "(CONT'D)" from a cue.
// An unclosed "(" strips to the end of the line.
func CharacterName(cue string) string {
	name := reParenthetical.ReplaceAllString(cue, " ")
	return strings.Join(strings.Fields(name), " ")
}

var defaultClassifier = NewClassifier(DefaultConfig())

// Classify runs the line classifier with DefaultConfig.
func Classify(text string) []Element { return defaultClassifier.Classify(text) }
