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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bigFish = `Title: Big Fish
Author: John August

INT. HOUSE - NIGHT #1#

/* cut this
for now */
WILL
(quietly)
I tell stories. [[check line]]

CUT TO:

# Act Two
= The turn
.SNIPER'S NEST

> THE END <`

func TestFountainParse(t *testing.T) {
	doc, err := Fountain{}.Parse(bigFish)
	require.NoError(t, err)

	assert.Equal(t, "fountain", doc.Strategy)
	assert.Equal(t, []TitleField{{Key: "Title", Value: "Big Fish"}, {Key: "Author", Value: "John August"}}, doc.TitlePage)
	assert.Equal(t, "Big Fish", doc.Title())

	assert.Equal(t, []Kind{
		KindSceneHeading, KindEmpty,
		KindCharacter, KindParenthetical, KindDialogue, KindEmpty,
		KindTransition, KindEmpty,
		KindSceneHeading, KindEmpty,
		KindAction,
	}, kinds(doc.Elements))

	els := doc.Elements
	assert.Equal(t, "INT. HOUSE - NIGHT", els[0].Text)
	assert.Equal(t, 3, els[0].Line)
	assert.Equal(t, "WILL", els[2].Text)
	assert.Equal(t, 7, els[2].Line)
	assert.Equal(t, "(quietly)", els[3].Text)
	assert.Equal(t, "I tell stories.", els[4].Text)
	assert.Equal(t, "CUT TO:", els[6].Text)
	assert.Equal(t, "SNIPER'S NEST", els[8].Text)
	assert.True(t, els[10].Centered)
	assert.Equal(t, "THE END", els[10].Text)

	assert.Equal(t, []string{"WILL"}, Characters(els))
	assert.Len(t, Scenes(els), 2)
}

func TestFountainForcedElements(t *testing.T) {
	doc, err := Fountain{}.Parse("@McCLANE\nYippee ki-yay.\n\n!SCREAMING INTO THE VOID\n\n>FADE OUT.\n\nBRICK ^\nHi.\n\n===\n\n~La la la")
	require.NoError(t, err)

	els := doc.Elements
	require.Len(t, els, 13)
	assert.Equal(t, KindCharacter, els[0].Kind)
	assert.Equal(t, "McCLANE", els[0].Text)
	assert.Equal(t, KindDialogue, els[1].Kind)
	assert.Equal(t, KindAction, els[3].Kind)
	assert.Equal(t, "SCREAMING INTO THE VOID", els[3].Text)
	assert.Equal(t, KindTransition, els[5].Kind)
	assert.Equal(t, "FADE OUT.", els[5].Text)
	assert.Equal(t, KindCharacter, els[7].Kind)
	assert.Equal(t, "BRICK", els[7].Text)
	assert.Equal(t, KindEmpty, els[10].Kind, "page break")
	assert.Equal(t, KindAction, els[12].Kind)
	assert.Equal(t, "La la la", els[12].Text)
}

func TestFountainAllCapsActionBeforeBlank(t *testing.T) {
	doc, err := Fountain{}.Parse("\nTHE DOOR SLAMS\n\nSILENCE")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindEmpty, KindAction, KindEmpty, KindAction}, kinds(doc.Elements))
}

func TestFountainNoTitlePageForUnknownKey(t *testing.T) {
	doc, err := Fountain{}.Parse("CUT TO:\n\nINT. BAR - NIGHT")
	require.NoError(t, err)
	assert.Empty(t, doc.TitlePage)
	assert.Equal(t, KindTransition, doc.Elements[0].Kind)
}

func TestFountainMultilineTitleValue(t *testing.T) {
	doc, err := Fountain{}.Parse("Title: A\nContact:\n    Jane Doe\n    555-0100\n\nFADE IN:")
	require.NoError(t, err)
	require.Len(t, doc.TitlePage, 2)
	assert.Equal(t, "Jane Doe\n555-0100", doc.TitlePage[1].Value)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, 5, doc.Elements[0].Line)
}

func TestFountainErrors(t *testing.T) {
	_, err := Fountain{}.Parse("INT. HOUSE\n/* never closed\nstill hidden")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedBoneyard))
	assert.Contains(t, err.Error(), "line 2")

	_, err = Fountain{}.Parse("INT. HOUSE\xff")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestFountainEmpty(t *testing.T) {
	doc, err := Fountain{}.Parse("")
	require.NoError(t, err)
	assert.Empty(t, doc.Elements)
	assert.Empty(t, doc.TitlePage)
}

func TestFountainNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{"[[", "*/", "/**/", ">", "<", ".", "@", "^", "===", "Title:", "Title: x\n", strings.Repeat("/*/*", 10) + "*/"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { _, _ = Fountain{}.Parse(in) }, in)
	}
}
