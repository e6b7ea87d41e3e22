/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"goscreenwriter/internal/export"
	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
)

type draftRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type previewResponse struct {
	HTML       string             `json:"html"`
	Characters []string           `json:"characters"`
	Scenes     []screenplay.Scene `json:"scenes"`
	Stats      screenplay.Stats   `json:"stats"`
	Summary    string             `json:"summary"`
	Strategy   string             `json:"strategy"`
	Degraded   bool               `json:"degraded"`
	Warning    string             `json:"warning,omitempty"`
}

func (s *Server) index(c *gin.Context) {
	var buf bytes.Buffer
	data := struct {
		AutosaveMs int
		Theme      string
	}{s.opts.AutosaveMs, s.opts.Theme}
	if err := indexTmpl.Execute(&buf, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "slot": s.opts.Store.Slot()})
}

func (s *Server) bindDraft(c *gin.Context) (draftRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return req, false
	}
	return req, true
}

func (s *Server) preview(c *gin.Context) {
	req, ok := s.bindDraft(c)
	if !ok {
		return
	}
	src := screenplay.BuildSource(req.Title, req.Body)
	doc := s.opts.Pipeline.Interpret(src)
	stats := screenplay.ComputeStats(src, doc.Elements)
	resp := previewResponse{
		HTML:       screenplay.RenderDocument(doc),
		Characters: screenplay.Characters(doc.Elements),
		Scenes:     screenplay.Scenes(doc.Elements),
		Stats:      stats,
		Summary:    stats.Summary(),
		Strategy:   doc.Strategy,
		Degraded:   doc.Degraded,
	}
	if doc.Err != nil {
		resp.Warning = doc.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getDraft(c *gin.Context) {
	d, err := s.opts.Store.LoadDraft(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	d.Slot = s.opts.Store.Slot()
	c.JSON(http.StatusOK, d)
}

func (s *Server) putDraft(c *gin.Context) {
	req, ok := s.bindDraft(c)
	if !ok {
		return
	}
	d := storage.Draft{Title: req.Title, Body: req.Body}
	if s.opts.Autosaver != nil {
		if err := s.opts.Autosaver.Schedule(d); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "autosave closed"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
		return
	}
	if err := s.opts.Store.SaveDraft(c.Request.Context(), d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (s *Server) listDrafts(c *gin.Context) {
	limit := 20
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, 200)
	}
	items, err := s.opts.Store.ListDrafts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": s.opts.Store.Slot(), "limit": limit, "items": items})
}

func (s *Server) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer func() { _ = f.Close() }()
	body, err := storage.ImportReader(fh.Filename, f)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrNotText) {
			status = http.StatusUnsupportedMediaType
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": fh.Filename, "body": body})
}

func (s *Server) exportDraft(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	// Pending edits must reach the store before exporting.
	if s.opts.Autosaver != nil {
		if err := s.opts.Autosaver.Flush(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
	}
	d, err := s.opts.Store.LoadDraft(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	art, err := export.Export(format, d, s.opts.Export)
	if err != nil {
		s.log.Error("export failed", slog.String("format", string(format)), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
