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
	"encoding/json"
	"time"

	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
)

// DocumentJSON is the JSON export payload.
type DocumentJSON struct {
	Title      string                  `json:"title"`
	SavedAt    *time.Time              `json:"saved_at,omitempty"`
	Strategy   string                  `json:"strategy"`
	Degraded   bool                    `json:"degraded"`
	Warning    string                  `json:"warning,omitempty"`
	TitlePage  []screenplay.TitleField `json:"title_page"`
	Elements   []screenplay.Element    `json:"elements"`
	Characters []string                `json:"characters"`
	Scenes     []screenplay.Scene      `json:"scenes"`
	Stats      screenplay.Stats        `json:"stats"`
}

// DocumentSchema is the JSON Schema the json export conforms to.
const DocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "strategy", "degraded", "title_page", "elements", "characters", "scenes", "stats"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "saved_at": {"type": "string", "format": "date-time"},
    "strategy": {"type": "string", "enum": ["fountain", "lines"]},
    "degraded": {"type": "boolean"},
    "warning": {"type": "string"},
    "title_page": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key", "value"],
        "properties": {"key": {"type": "string"}, "value": {"type": "string"}}
      }
    },
    "elements": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "text", "display", "line", "end_line"],
        "properties": {
          "kind": {"enum": ["empty", "scene_heading", "character", "dialogue", "parenthetical", "transition", "action"]},
          "text": {"type": "string"},
          "display": {"type": "string"},
          "line": {"type": "integer", "minimum": 0},
          "end_line": {"type": "integer", "minimum": 0},
          "centered": {"type": "boolean"}
        }
      }
    },
    "characters": {"type": "array", "items": {"type": "string", "minLength": 1}, "uniqueItems": true},
    "scenes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["heading", "number", "line"],
        "properties": {
          "heading": {"type": "string"},
          "number": {"type": "integer", "minimum": 1},
          "line": {"type": "integer", "minimum": 0}
        }
      }
    },
    "stats": {
      "type": "object",
      "required": ["words", "pages", "scenes", "characters"],
      "properties": {
        "words": {"type": "integer", "minimum": 0},
        "pages": {"type": "integer", "minimum": 1},
        "scenes": {"type": "integer", "minimum": 0},
        "characters": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// NewDocumentJSON assembles the payload for an interpreted draft.
func NewDocumentJSON(doc *screenplay.Document, source string, d storage.Draft) DocumentJSON {
	out := DocumentJSON{
		Title:      displayTitle(d.Title),
		Strategy:   doc.Strategy,
		Degraded:   doc.Degraded,
		TitlePage:  doc.TitlePage,
		Elements:   doc.Elements,
		Characters: screenplay.Characters(doc.Elements),
		Scenes:     screenplay.Scenes(doc.Elements),
		Stats:      screenplay.ComputeStats(source, doc.Elements),
	}
	if !d.TS.IsZero() {
		ts := d.TS.UTC()
		out.SavedAt = &ts
	}
	if doc.Err != nil {
		out.Warning = doc.Err.Error()
	}
	if out.TitlePage == nil {
		out.TitlePage = []screenplay.TitleField{}
	}
	if out.Elements == nil {
		out.Elements = []screenplay.Element{}
	}
	return out
}

func jsonDocument(in interpreted, d storage.Draft) ([]byte, error) {
	return json.MarshalIndent(NewDocumentJSON(in.doc, in.source, d), "", "  ")
}
