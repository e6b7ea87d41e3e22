/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package server serves the local editor: a single page with a live preview, draft autosave and exports.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goscreenwriter/internal/export"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
)

//go:embed static/index.html
var static embed.FS

var indexTmpl = template.Must(template.ParseFS(static, "static/index.html"))

// maxBodyBytes caps request bodies for preview, draft and import calls.
const maxBodyBytes = 4 << 20

// Options wires the server to its collaborators. Store is required.
type Options struct {
	Pipeline  *screenplay.Pipeline
	Store     storage.Store
	Autosaver *storage.Autosaver
	Export    export.Options
	Theme     string
	// AutosaveMs is the editor-side debounce before a draft is sent.
	AutosaveMs int
}

// Server is the HTTP surface of the editor.
type Server struct {
	opts   Options
	engine *gin.Engine
	log    *slog.Logger
}

// New builds the gin engine and registers all routes.
func New(opts Options) *Server {
	if opts.Pipeline == nil {
		opts.Pipeline = screenplay.DefaultPipeline()
	}
	if opts.AutosaveMs <= 0 {
		opts.AutosaveMs = int(storage.DefaultAutosaveDelay / time.Millisecond)
	}
	if opts.Export.Pipeline == nil {
		opts.Export.Pipeline = opts.Pipeline
	}
	s := &Server{opts: opts, log: applog.WithComponent("server")}

	r := gin.New()
	r.Use(s.requestLog(), gin.Recovery())
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})

	r.GET("/", s.index)
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.POST("/preview", s.preview)
	api.GET("/draft", s.getDraft)
	api.PUT("/draft", s.putDraft)
	api.GET("/drafts", s.listDrafts)
	api.POST("/import", s.importFile)
	api.GET("/export/:format", s.exportDraft)

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully and flushes the autosaver.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", "http://"+ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if s.opts.Autosaver != nil {
		if ferr := s.opts.Autosaver.Flush(shutdownCtx); ferr != nil {
			s.log.Error("final autosave failed", slog.Any("err", ferr))
		}
	}
	s.log.Info("server stopped")
	return err
}

// RequestIDHeader carries the per-request id; a client-supplied value is kept.
const RequestIDHeader = "X-Request-ID"

// requestLog tags each request with an id and logs one line per request through slog instead of gin's default logger.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Next()
		lvl := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			lvl = slog.LevelError
		}
		s.log.Log(c.Request.Context(), lvl, "request",
			slog.String("req", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
		)
	}
}
