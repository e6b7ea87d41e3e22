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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	cases := map[string]int{
		"":                                   0,
		"   ":                                0,
		"Don't stop—the well-known 42 cats.": 6,
		"JOHN\n        Hello there.":         3,
		"naïve café ’tis":                    3,
	}
	for in, want := range cases {
		assert.Equal(t, want, CountWords(in), "CountWords(%q)", in)
	}
}

func TestEstimatePages(t *testing.T) {
	mk := func(n int) []Element { return make([]Element, n) }
	cases := []struct{ n, want int }{{0, 1}, {1, 1}, {55, 1}, {82, 1}, {83, 2}, {110, 2}, {165, 3}}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EstimatePages(mk(tc.n)), "EstimatePages(%d)", tc.n)
	}
}

func TestComputeStatsSummary(t *testing.T) {
	text := "INT. KITCHEN - DAY\n\nJOHN\n        Hello there."
	s := ComputeStats(text, Classify(text))
	assert.Equal(t, Stats{Words: 6, Pages: 1, Scenes: 1, Characters: 1}, s)
	assert.Equal(t, "6w • 1p", s.Summary())
}
