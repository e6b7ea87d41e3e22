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
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrUnterminatedBoneyard is returned when a "/*" comment is never closed.
	ErrUnterminatedBoneyard = errors.New("screenplay: unterminated boneyard")
	// ErrInvalidEncoding is returned for input that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("screenplay: input is not valid UTF-8")
)

// Fountain is the full-grammar strategy: title page, boneyard, notes, sections,
// synopses, page breaks, forced elements, transitions, centered text and
// parentheticals inside dialogue blocks. Non-printing lines (notes, sections,
// synopses, title page) yield no element. It fails on input it cannot read
// faithfully; the Pipeline then falls back to the line classifier.
type Fountain struct{}

// Name implements Strategy.
func (Fountain) Name() string { return "fountain" }

var (
	reSceneHeading = regexp.MustCompile(`(?i)^(INT|EXT|EST|INT\.?/EXT|I/E)[. ]`)
	reTitleKey     = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*(.*)$`)
	rePageBreak    = regexp.MustCompile(`^={3,}$`)
	reNote         = regexp.MustCompile(`\[\[.*?\]\]`)
	reSceneNumber  = regexp.MustCompile(`\s*#[\w.\-]+#\s*$`)
)

var titleKeys = map[string]bool{
	"title": true, "credit": true, "author": true, "authors": true, "source": true,
	"draft date": true, "date": true, "contact": true, "copyright": true,
	"notes": true, "revision": true,
}

type fline struct {
	Line
	text string // trimmed, with notes and boneyard removed
	omit bool   // non-printing line
}

// Parse implements Strategy.
func (f Fountain) Parse(text string) (*Document, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}
	lines := SplitLines(text)
	title, start := parseTitlePage(lines)
	body, err := stripComments(lines[start:])
	if err != nil {
		return nil, err
	}

	doc := &Document{TitlePage: title, Strategy: f.Name(), Elements: make([]Element, 0, len(body))}
	prevBlank := true
	inDialogue := false
	for i, ln := range body {
		if ln.omit {
			continue
		}
		t := ln.text
		el := Element{Line: ln.Index, EndLine: ln.Index}
		if t == "" {
			el.Kind = KindEmpty
			doc.Elements = append(doc.Elements, el)
			prevBlank, inDialogue = true, false
			continue
		}
		if inDialogue {
			if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
				el.Kind = KindParenthetical
			} else {
				el.Kind = KindDialogue
			}
			el.Text, el.Display = t, t
			doc.Elements = append(doc.Elements, el)
			continue
		}
		if strings.HasPrefix(t, "#") || (strings.HasPrefix(t, "=") && !rePageBreak.MatchString(t)) {
			// sections and synopses
			continue
		}
		if rePageBreak.MatchString(t) {
			el.Kind = KindEmpty
			doc.Elements = append(doc.Elements, el)
			prevBlank = true
			continue
		}
		classifyFountainLine(&el, t, prevBlank, nextBlank(body, i))
		doc.Elements = append(doc.Elements, el)
		prevBlank = false
		inDialogue = el.Kind == KindCharacter
	}
	return doc, nil
}

// classifyFountainLine fills el for a non-blank line outside a dialogue block.
func classifyFountainLine(el *Element, t string, prevBlank, nextBlank bool) {
	upper := strings.ToUpper(t)
	set := func(k Kind, s string) {
		el.Kind = k
		el.Text, el.Display = s, s
	}
	switch {
	case strings.HasPrefix(t, "!"):
		set(KindAction, strings.TrimSpace(t[1:]))
	case strings.HasPrefix(t, ">") && strings.HasSuffix(t, "<") && len(t) > 1:
		set(KindAction, strings.TrimSpace(t[1:len(t)-1]))
		el.Centered = true
	case strings.HasPrefix(t, ">"):
		set(KindTransition, strings.TrimSpace(t[1:]))
	case strings.HasPrefix(t, ".") && !strings.HasPrefix(t, ".."):
		set(KindSceneHeading, reSceneNumber.ReplaceAllString(strings.TrimSpace(t[1:]), ""))
	case prevBlank && reSceneHeading.MatchString(t):
		set(KindSceneHeading, reSceneNumber.ReplaceAllString(t, ""))
	case prevBlank && nextBlank && t == upper && strings.HasSuffix(t, "TO:"):
		set(KindTransition, t)
	case strings.HasPrefix(t, "~"):
		set(KindAction, strings.TrimSpace(t[1:]))
	case strings.HasPrefix(t, "@") || (prevBlank && !nextBlank && isFountainCue(t)):
		cue := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(t, "@"), "^"))
		el.Kind = KindCharacter
		el.Display = cue
		el.Text = CharacterName(cue)
	default:
		set(KindAction, t)
	}
}

// isFountainCue: the name part (before any extension) is uppercase and has a letter.
func isFountainCue(t string) bool {
	name := CharacterName(strings.TrimSuffix(t, "^"))
	if name == "" || name != strings.ToUpper(name) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsLetter) >= 0
}

func nextBlank(body []fline, i int) bool {
	for j := i + 1; j < len(body); j++ {
		if body[j].omit {
			continue
		}
		return body[j].text == ""
	}
	return true
}

// parseTitlePage consumes a leading block of "Key: value" lines (known keys only)
// and returns the fields and the index of the first body line.
func parseTitlePage(lines []Line) ([]TitleField, int) {
	if len(lines) == 0 {
		return nil, 0
	}
	m := reTitleKey.FindStringSubmatch(lines[0].Raw)
	if m == nil || !titleKeys[strings.ToLower(strings.TrimSpace(m[1]))] {
		return nil, 0
	}
	var fields []TitleField
	i := 0
	for ; i < len(lines); i++ {
		ln := lines[i]
		if ln.Trimmed == "" {
			i++
			break
		}
		if m := reTitleKey.FindStringSubmatch(ln.Raw); m != nil && titleKeys[strings.ToLower(strings.TrimSpace(m[1]))] {
			fields = append(fields, TitleField{Key: strings.TrimSpace(m[1]), Value: strings.TrimSpace(m[2])})
			continue
		}
		// continuation of a multi-line value
		last := &fields[len(fields)-1]
		if last.Value == "" {
			last.Value = ln.Trimmed
		} else {
			last.Value += "\n" + ln.Trimmed
		}
	}
	return fields, i
}

// stripComments removes /* boneyard */ spans and [[notes]]. Lines made empty by the
// removal are marked omit so they do not split dialogue blocks.
func stripComments(lines []Line) ([]fline, error) {
	out := make([]fline, len(lines))
	inBone := false
	boneStart := 0
	for i, ln := range lines {
		var b strings.Builder
		s := ln.Raw
		for s != "" {
			if inBone {
				end := strings.Index(s, "*/")
				if end < 0 {
					s = ""
					break
				}
				s = s[end+2:]
				inBone = false
				continue
			}
			open := strings.Index(s, "/*")
			if open < 0 {
				b.WriteString(s)
				break
			}
			b.WriteString(s[:open])
			s = s[open+2:]
			inBone = true
			boneStart = ln.Index
		}
		cleaned := strings.TrimSpace(reNote.ReplaceAllString(b.String(), ""))
		out[i] = fline{Line: ln, text: cleaned, omit: cleaned == "" && ln.Trimmed != ""}
	}
	if inBone {
		return nil, fmt.Errorf("%w (opened at line %d)", ErrUnterminatedBoneyard, boneStart+1)
	}
	return out, nil
}
