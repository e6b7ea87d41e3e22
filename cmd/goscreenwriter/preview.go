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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/termview"
)

func withInputFlags(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, inputFlags...), flags...)
}

func previewCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Format a script for the terminal or as an HTML fragment",
		ArgsUsage: "[file|-]",
		Flags: withInputFlags(
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: terminal, html",
				Value:   "terminal",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Terminal width (0 = detect)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := st.readInput(ctx, cmd)
			if err != nil {
				return err
			}
			src := in.source()
			doc := st.pipeline().Interpret(src)
			w := stdout(cmd)
			switch strings.ToLower(cmd.String("output")) {
			case "html":
				_, err = fmt.Fprintln(w, screenplay.RenderDocument(doc))
			case "terminal", "":
				r := &termview.Renderer{Width: int(cmd.Int("width"))}
				err = r.Write(w, doc, src)
			default:
				return fmt.Errorf("unknown output format %q", cmd.String("output"))
			}
			return err
		},
	}
}

func charactersCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:      "characters",
		Usage:     "List the speaking characters, one per line",
		ArgsUsage: "[file|-]",
		Flags:     withInputFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := st.readInput(ctx, cmd)
			if err != nil {
				return err
			}
			doc := st.pipeline().Interpret(in.source())
			w := stdout(cmd)
			for _, name := range screenplay.Characters(doc.Elements) {
				if _, err := fmt.Fprintln(w, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func scenesCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:      "scenes",
		Usage:     "List scene headings in order",
		ArgsUsage: "[file|-]",
		Flags:     withInputFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := st.readInput(ctx, cmd)
			if err != nil {
				return err
			}
			doc := st.pipeline().Interpret(in.source())
			w := stdout(cmd)
			for _, sc := range screenplay.Scenes(doc.Elements) {
				// Line is 0-based internally; editors count from 1.
				if _, err := fmt.Fprintf(w, "%3d  %-50s  line %d\n", sc.Number, sc.Heading, sc.Line+1); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func statsCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show word count, page estimate, scenes and characters",
		ArgsUsage: "[file|-]",
		Flags: withInputFlags(
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print stats as JSON",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := st.readInput(ctx, cmd)
			if err != nil {
				return err
			}
			src := in.source()
			doc := st.pipeline().Interpret(src)
			stats := screenplay.ComputeStats(src, doc.Elements)
			w := stdout(cmd)
			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				return enc.Encode(struct {
					screenplay.Stats
					Strategy string `json:"strategy"`
					Degraded bool   `json:"degraded"`
				}{stats, doc.Strategy, doc.Degraded})
			}
			_, err = fmt.Fprintf(w, "%s\nscenes: %d\ncharacters: %d\nparser: %s\n", stats.Summary(), stats.Scenes, stats.Characters, doc.Strategy)
			if err == nil && doc.Degraded {
				_, err = fmt.Fprintf(w, "warning: %v\n", doc.Err)
			}
			return err
		},
	}
}
