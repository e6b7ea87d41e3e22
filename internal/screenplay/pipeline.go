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
	"log/slog"
	"strings"

	applog "goscreenwriter/internal/log"
)

// Strategy turns script text into a Document.
type Strategy interface {
	Name() string
	Parse(text string) (*Document, error)
}

// ErrStrategyPanic wraps a panic raised inside a strategy.
var ErrStrategyPanic = errors.New("screenplay: strategy panicked")

// Pipeline tries Strategies in order and keeps the first success. The line
// classifier always runs last, so Interpret cannot fail.
type Pipeline struct {
	Strategies []Strategy
	Fallback   *Classifier
	// Logger receives strategy failures; defaults to the "screenplay" component logger.
	Logger *slog.Logger
}

// NewPipeline builds a pipeline whose preferred strategies run before fallback.
func NewPipeline(fallback *Classifier, preferred ...Strategy) *Pipeline {
	return &Pipeline{Strategies: preferred, Fallback: fallback}
}

// DefaultPipeline prefers the Fountain grammar and falls back to the default line classifier.
func DefaultPipeline() *Pipeline { return NewPipeline(defaultClassifier, Fountain{}) }

// Interpret parses text with the first strategy that succeeds. When a preferred
// strategy fails the returned document is marked Degraded and carries the first error.
func (p *Pipeline) Interpret(text string) *Document {
	var firstErr error
	for _, s := range p.Strategies {
		if s == nil {
			continue
		}
		doc, err := runStrategy(s, text)
		if err == nil && doc != nil {
			if doc.Strategy == "" {
				doc.Strategy = s.Name()
			}
			doc.Degraded = firstErr != nil
			doc.Err = firstErr
			return doc
		}
		if err == nil {
			err = fmt.Errorf("screenplay: strategy %s returned no document", s.Name())
		}
		p.logger().Warn("strategy failed, falling back",
			slog.String("strategy", s.Name()), slog.Any("err", err), slog.Int("bytes", len(text)))
		if firstErr == nil {
			firstErr = err
		}
	}

	fb := p.Fallback
	if fb == nil {
		fb = defaultClassifier
	}
	doc, _ := fb.Parse(text)
	doc.Degraded = firstErr != nil
	doc.Err = firstErr
	return doc
}

func runStrategy(s Strategy, text string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %s: %v", ErrStrategyPanic, s.Name(), r)
		}
	}()
	return s.Parse(text)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return applog.WithComponent("screenplay")
}

// BuildSource prepends a synthesized title page to body when title is not blank.
func BuildSource(title, body string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return body
	}
	return "Title: " + t + "\n\n" + body
}
