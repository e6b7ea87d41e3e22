/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage persists screenplay drafts.
// A draft is the (title, body) pair the editor autosaves under a named slot; every save appends a row so the
// slot doubles as a short history. Two backends implement Store: an embedded SQLite database under
// <dataDir>/.gsw/drafts.sqlite (default) and PostgreSQL for shared setups.
// The package also imports script text from .fountain, .txt and Markdown files.
package storage
