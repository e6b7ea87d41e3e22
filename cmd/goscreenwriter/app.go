/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"goscreenwriter/internal/config"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
	"goscreenwriter/internal/version"
)

// state carries what commands share: the loaded config and a lazily opened draft store.
type state struct {
	cfg       config.AppConfig
	store     storage.Store
	autosaver *storage.Autosaver
}

func (s *state) setup(cmd *cli.Command) error {
	var (
		cfg config.AppConfig
		err error
	)
	if p := strings.TrimSpace(cmd.String("config")); p != "" {
		cfg, err = config.LoadFile(p)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Writer:    cmd.Root().ErrWriter,
	})
	s.cfg = cfg
	return nil
}

func (s *state) pipeline() *screenplay.Pipeline { return s.cfg.Classifier.Pipeline() }

func (s *state) openStore(ctx context.Context) (storage.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	st, err := storage.Open(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.store = st
	return st, nil
}

// openAutosaver wraps the store in an autosaver configured from the storage section.
func (s *state) openAutosaver(ctx context.Context) (*storage.Autosaver, error) {
	if s.autosaver != nil {
		return s.autosaver, nil
	}
	st, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	s.autosaver = storage.NewAutosaver(st, s.cfg.Storage.AutosaveDelay(), s.cfg.Storage.KeepSnapshots)
	return s.autosaver, nil
}

func (s *state) flushPending() error {
	if s.autosaver == nil {
		return nil
	}
	return s.autosaver.FlushNow()
}

func (s *state) close(ctx context.Context) error {
	var errs []error
	if s.autosaver != nil {
		errs = append(errs, s.autosaver.Close(ctx))
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
		s.store = nil
	}
	return errors.Join(errs...)
}

// input is script text and the title it should be shown under.
type input struct {
	Title string
	Body  string
}

func (in input) source() string { return screenplay.BuildSource(in.Title, in.Body) }

var inputFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "title",
		Usage: "Title placed on the title page",
	},
	&cli.BoolFlag{
		Name:  "draft",
		Usage: "Use the saved draft instead of a file or stdin",
	},
}

// readInput resolves the script from the saved draft (--draft), a file argument, or stdin ("-" or no argument).
func (s *state) readInput(ctx context.Context, cmd *cli.Command) (input, error) {
	title := cmd.String("title")
	if cmd.Bool("draft") {
		st, err := s.openStore(ctx)
		if err != nil {
			return input{}, err
		}
		d, err := st.LoadDraft(ctx)
		if err != nil {
			return input{}, err
		}
		if d.IsZero() {
			return input{}, fmt.Errorf("no draft saved in slot %q", st.Slot())
		}
		if title == "" {
			title = d.Title
		}
		return input{Title: title, Body: d.Body}, nil
	}
	path := cmd.Args().First()
	var (
		body string
		err  error
	)
	if path == "" || path == "-" {
		body, err = storage.ImportReader("stdin", stdin(cmd))
	} else {
		body, err = storage.ImportFile(path)
	}
	if err != nil {
		return input{}, err
	}
	return input{Title: title, Body: body}, nil
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func versionString() string { return version.String() }

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(stdout(cmd), "Go Screenwriter", version.String())
			return err
		},
	}
}
