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
	"math"
	"regexp"
)

// LinesPerPage is the rough count of printed lines on a screenplay page.
const LinesPerPage = 55

var reWord = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)

// CountWords counts runs of letters and digits; inner apostrophes and hyphens join a word.
func CountWords(text string) int {
	return len(reWord.FindAllStringIndex(text, -1))
}

// EstimatePages approximates the page count from the number of rendered lines. Never below 1.
func EstimatePages(elements []Element) int {
	pages := int(math.Round(float64(len(elements)) / LinesPerPage))
	if pages < 1 {
		return 1
	}
	return pages
}

// Stats are the derived document metrics shown next to the preview.
type Stats struct {
	Words      int `json:"words"`
	Pages      int `json:"pages"`
	Scenes     int `json:"scenes"`
	Characters int `json:"characters"`
}

// ComputeStats derives Stats from the source text and its elements.
func ComputeStats(text string, elements []Element) Stats {
	return Stats{
		Words:      CountWords(text),
		Pages:      EstimatePages(elements),
		Scenes:     len(Scenes(elements)),
		Characters: len(Characters(elements)),
	}
}

// Summary renders the compact "<words>w • <pages>p" label.
func (s Stats) Summary() string { return fmt.Sprintf("%dw • %dp", s.Words, s.Pages) }
