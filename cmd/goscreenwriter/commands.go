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
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"goscreenwriter/internal/export"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/server"
	"goscreenwriter/internal/storage"
)

func exportCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a script as fountain, txt, md, html, pdf or json files",
		ArgsUsage: "[file|-]",
		Flags: withInputFlags(
			&cli.StringSliceFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Formats to write. Example: --format=pdf,html",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Format preset when --format is not given: share, archive, all",
				Value: string(export.PresetShare),
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory",
				Value: ".",
			},
			&cli.BoolFlag{
				Name:  "scene-numbers",
				Usage: "Print scene numbers in the PDF margin",
			},
			&cli.StringFlag{
				Name:  "paper",
				Usage: "PDF paper size: letter, a4",
				Value: "letter",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := st.readInput(ctx, cmd)
			if err != nil {
				return err
			}
			var formats []string
			for _, f := range cmd.StringSlice("format") {
				formats = append(formats, strings.Split(f, ",")...)
			}
			paths, err := export.BatchExport(storage.Draft{Title: in.Title, Body: in.Body}, export.BatchOptions{
				Preset:  export.PresetName(cmd.String("preset")),
				Formats: formats,
				OutDir:  cmd.String("out"),
				Export: export.Options{
					Pipeline: st.pipeline(),
					PDF:      export.PDFOptions{PaperSize: cmd.String("paper"), NumberScenes: cmd.Bool("scene-numbers")},
				},
			})
			for _, p := range paths {
				fmt.Fprintln(stdout(cmd), p)
			}
			return err
		},
	}
}

func importCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Load a .fountain, .txt or .md file into the saved draft",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "Draft title (default: file name without extension)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("import requires a file")
			}
			body, err := storage.ImportFile(path)
			if err != nil {
				return err
			}
			title := cmd.String("title")
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			store, err := st.openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.SaveDraft(ctx, storage.Draft{Title: title, Body: body}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout(cmd), "imported %q into slot %s (%d bytes)\n", title, store.Slot(), len(body))
			return err
		},
	}
}

func draftCmd(st *state) *cli.Command {
	show := func(ctx context.Context, cmd *cli.Command) error {
		store, err := st.openStore(ctx)
		if err != nil {
			return err
		}
		d, err := store.LoadDraft(ctx)
		if err != nil {
			return err
		}
		w := stdout(cmd)
		if d.IsZero() {
			_, err = fmt.Fprintf(w, "no draft saved in slot %s\n", store.Slot())
			return err
		}
		art, err := export.Export(export.FormatFountain, d, export.Options{Pipeline: st.pipeline()})
		if err != nil {
			return err
		}
		_, err = w.Write(art.Data)
		return err
	}
	return &cli.Command{
		Name:   "draft",
		Usage:  "Inspect the saved draft and its history",
		Action: show,
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the latest draft as Fountain",
				Action: show,
			},
			{
				Name:  "list",
				Usage: "List saved versions, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum entries"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := st.openStore(ctx)
					if err != nil {
						return err
					}
					list, err := store.ListDrafts(ctx, int(cmd.Int("limit")))
					if err != nil {
						return err
					}
					w := stdout(cmd)
					for _, d := range list {
						title := d.Title
						if title == "" {
							title = "(untitled)"
						}
						fmt.Fprintf(w, "%s  %-30s  %6d bytes\n", d.TS.Local().Format("2006-01-02 15:04:05"), title, len(d.Body))
					}
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "Delete all but the newest versions",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "keep", Value: 10, Usage: "Versions to keep"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := st.openStore(ctx)
					if err != nil {
						return err
					}
					n, err := store.PruneDrafts(ctx, int(cmd.Int("keep")))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(stdout(cmd), "deleted %d versions\n", n)
					return err
				},
			},
		},
	}
}

func serveCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the browser editor with live preview and autosave",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := st.openStore(ctx)
			if err != nil {
				return err
			}
			saver, err := st.openAutosaver(ctx)
			if err != nil {
				return err
			}
			addr := cmd.String("addr")
			if addr == "" {
				addr = st.cfg.Server.Addr
			}
			srv := server.New(server.Options{
				Pipeline:   st.pipeline(),
				Store:      store,
				Autosaver:  saver,
				Theme:      st.cfg.General.Theme,
				AutosaveMs: st.cfg.Storage.AutosaveMs,
			})
			applog.WithComponent("cli").Info("serving editor", slog.String("addr", addr), slog.String("slot", store.Slot()))
			return srv.Run(ctx, addr)
		},
	}
}
