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

import "sort"

// Characters returns the distinct speaker names of all Character elements, sorted ascending.
// Names are compared after parenthetical stripping and are case-sensitive.
func Characters(elements []Element) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, el := range elements {
		if el.Kind != KindCharacter {
			continue
		}
		name := CharacterName(el.Text)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Scenes lists scene headings in document order, numbered from 1.
func Scenes(elements []Element) []Scene {
	out := []Scene{}
	for _, el := range elements {
		if el.Kind != KindSceneHeading {
			continue
		}
		out = append(out, Scene{Heading: el.Text, Number: len(out) + 1, Line: el.Line})
	}
	return out
}

// SceneAt returns the scene containing source line idx, or false when idx precedes the first heading.
func SceneAt(scenes []Scene, idx int) (Scene, bool) {
	i := sort.Search(len(scenes), func(i int) bool { return scenes[i].Line > idx })
	if i == 0 {
		return Scene{}, false
	}
	return scenes[i-1], true
}
