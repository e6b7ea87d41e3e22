/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package screenplay interprets Fountain-style screenplay markup.
// It classifies lines into scene headings, character cues, dialogue and action,
// renders the result as an HTML fragment for the preview pane, and derives the
// character and scene registries. Every function is a pure function of its input;
// nothing is cached across calls.
package screenplay
