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
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"goscreenwriter/internal/config"
	"goscreenwriter/internal/crash"
	applog "goscreenwriter/internal/log"
)

func main() {
	st := &state{}
	defer crash.Recover(crashDir(), st.flushPending)

	if err := newRootCmd(st).Run(context.Background(), os.Args); err != nil {
		applog.WithComponent("cli").Error("command failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// crashDir resolves the report directory before flags are parsed so the deferred handler has it.
func crashDir() string {
	cfg, _ := config.Load()
	return filepath.Join(cfg.General.DataDir, "crash")
}

func newRootCmd(st *state) *cli.Command {
	return &cli.Command{
		Name:    "goscreenwriter",
		Usage:   "Write screenplays in plain text and preview them as formatted pages",
		Version: versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yaml (default: per-user config, or $GSW_CONFIG)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides config)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, st.setup(cmd)
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			return st.close(ctx)
		},
		Commands: []*cli.Command{
			previewCmd(st),
			exportCmd(st),
			charactersCmd(st),
			scenesCmd(st),
			statsCmd(st),
			importCmd(st),
			draftCmd(st),
			serveCmd(st),
			versionCmd(),
		},
	}
}
