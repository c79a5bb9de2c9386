package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/render"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
	syncx "github.com/bioradar/implementation-scorecard/internal/sync"
)

// grid aggregates the latest stored result for the {sector} URL param.
func (d *Deps) grid(r *http.Request) (string, scorecard.Grid, error) {
	sector := scorecard.NormalizeSector(chi.URLParam(r, "sector"), "")
	rec, err := d.Store.LatestResult(r.Context())
	if err != nil {
		return sector, nil, err
	}
	g, err := scorecard.Aggregate(rec.Result.Rows(sector), sector)
	return sector, g, err
}

// GET /api/scorecard/{sector}/cells
func CellsHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector, g, err := d.grid(r)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sector": sector, "cells": g})
	}
}

// GET /api/scorecard/{sector}/summary?n=2
func SummaryHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector, g, err := d.grid(r)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		n := d.TopN
		if v, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && v >= 0 {
			n = v
		}
		writeJSON(w, http.StatusOK, map[string]any{"sector": sector, "summary": scorecard.Summarize(g, n)})
	}
}

// sizeParam reads w/h query params, falling back to def.
func sizeParam(r *http.Request, def radial.Size) radial.Size {
	size := def
	if v, err := strconv.ParseFloat(r.URL.Query().Get("w"), 64); err == nil {
		size.Width = v
	}
	if v, err := strconv.ParseFloat(r.URL.Query().Get("h"), 64); err == nil {
		size.Height = v
	}
	return size
}

// GET /api/scorecard/{sector}/layout?w=600&h=600
func LayoutHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector, g, err := d.grid(r)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		diagram := radial.Build(g, sizeParam(r, radial.Size{}), d.Layout)
		writeJSON(w, http.StatusOK, map[string]any{"sector": sector, "diagram": diagram})
	}
}

// GET /api/scorecard/{sector}/diagram.svg?w=600&h=600&empty=1
func DiagramHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector, g, err := d.grid(r)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		size := sizeParam(r, radial.Size{Width: 600, Height: 600})
		var buf bytes.Buffer
		err = render.SVG(&buf, g, size, render.SVGOptions{
			Layout:     d.Layout,
			ShowEmpty:  r.URL.Query().Get("empty") == "1",
			HideLabels: r.URL.Query().Get("labels") == "0",
			Title:      sector,
		})
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(buf.Bytes())
	}
}

// GET /api/scorecard/{sector}/chart
func ChartHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector, g, err := d.grid(r)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		var buf bytes.Buffer
		if err := render.SummaryPage(&buf, sector, scorecard.Summarize(g, d.TopN)); err != nil {
			fail(w, d.Log, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

// DELETE /api/scorecard
func ResetHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.Clear(r.Context()); err != nil {
			fail(w, d.Log, err)
			return
		}
		d.Session.Reset()
		st := d.seedSession(r.Context())
		d.event(r.Context(), syncx.TypeScorecardReset, st.ID, nil)
		if d.Metrics != nil {
			d.Metrics.Resets.Inc()
		}
		d.Log.Info("scorecard reset", zap.String("session", st.ID))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": st.ID})
	}
}
