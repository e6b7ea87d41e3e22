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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKinds(t *testing.T) {
	out := Render(Classify("INT. KITCHEN - DAY\n\nJOHN (V.O.)\n        Hello there.\n\nHe waves."))

	assert.Equal(t, `<div class="screenplay-preview">`+
		`<div class="scene-heading">INT. KITCHEN - DAY</div>`+
		`<br>`+
		`<div class="character">JOHN (V.O.)</div>`+
		`<div class="dialogue">Hello there.</div>`+
		`<br>`+
		`<div class="action">He waves.</div>`+
		`</div>`, out)
}

func TestRenderEscapesText(t *testing.T) {
	out := Render(Classify(`She types <script>alert("x")</script> & waits.`))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&amp; waits.")
}

func TestRenderRichKinds(t *testing.T) {
	out := Render([]Element{
		{Kind: KindParenthetical, Text: "(beat)"},
		{Kind: KindTransition, Text: "CUT TO:"},
		{Kind: KindAction, Text: "THE END", Centered: true},
	})
	assert.Contains(t, out, `<div class="parenthetical">(beat)</div>`)
	assert.Contains(t, out, `<div class="transition">CUT TO:</div>`)
	assert.Contains(t, out, `<div class="action centered">THE END</div>`)
}

func TestRenderTitlePage(t *testing.T) {
	assert.Equal(t, "", RenderTitlePage(nil))

	out := RenderTitlePage([]TitleField{{Key: "Title", Value: "Big <Fish>"}, {Key: "Draft date", Value: "1\n2"}})
	assert.True(t, strings.HasPrefix(out, `<div class="title-page">`))
	assert.Contains(t, out, `<p class="title">Big &lt;Fish&gt;</p>`)
	assert.Contains(t, out, `<p class="draft-date">1<br>2</p>`)
}

func TestRenderDocumentNil(t *testing.T) {
	assert.Equal(t, `<div class="screenplay-preview"></div>`, RenderDocument(nil))
}

func TestKindTextRoundTrip(t *testing.T) {
	for k := KindEmpty; k <= KindAction; k++ {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got Kind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got, "kind %s", b)
	}

	var bad Kind
	assert.Error(t, bad.UnmarshalText([]byte("montage")))
}

func TestElementsJSONRoundTrip(t *testing.T) {
	in := Classify("INT. KITCHEN - DAY\n\nJOHN (V.O.)\n        Hello there.\n\nHe waves.")
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scene_heading"`)

	var out []Element
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
