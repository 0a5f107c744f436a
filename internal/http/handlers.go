package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"finboard/internal/log"
	"finboard/internal/tabs"
	"finboard/internal/widgets"
	appweb "finboard/web"
)

// handleDashboard is one page load: a fresh dashboard is drawn into a fresh
// host page. When the data cannot be loaded the unpopulated page is sent with
// 502 and no session is kept.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if s.shell == nil {
		logger.ErrorContext(ctx, "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if s.source == nil {
		logger.ErrorContext(ctx, "No dashboard data source configured",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "data source not configured", http.StatusInternalServerError)
		return
	}

	id := newDashboardID()
	doc, err := s.shell.Document(appweb.Page{
		DashboardID: id,
		Anchors:     s.opts.Anchors,
		Locale:      s.opts.View.Locale,
		Generated:   s.now(),
	})
	if err != nil {
		logger.ErrorContext(ctx, "Host page rendering failed",
			log.FieldComponent, log.ComponentTemplate,
			log.FieldError, err.Error())
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	dash := widgets.NewDashboard(doc, widgets.Config{
		Anchors: s.opts.Anchors,
		Charts:  s.opts.Charts,
		Logger:  logger.With(log.FieldDashboard, id),
		View:    s.opts.View,
	})

	status := http.StatusOK
	s.appMetrics.loads.Add(1)
	if err := dash.Load(ctx, s.source); err != nil {
		// Already logged by the dashboard.
		s.appMetrics.loadFailures.Add(1)
		status = http.StatusBadGateway
		doc.Body().SetAttr("data-dashboard", "")
	} else {
		s.sessions.Set(id, dash)
		if werr := dash.Err(); werr != nil {
			logger.WarnContext(ctx, "Dashboard rendered with missing widgets",
				log.FieldDashboard, id,
				log.FieldError, werr.Error())
		}
	}

	var buf bytes.Buffer
	if err := dash.Render(&buf); err != nil {
		logger.ErrorContext(ctx, "Dashboard rendering failed",
			log.FieldDashboard, id,
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error())
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// handleTab applies a tab click and answers with the re-painted panel.
func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	group := sanitizeInput(r.PathValue("group"))
	option := sanitizeInput(r.PathValue("option"))
	logger := log.FromContext(ctx).With(log.FieldDashboard, id)

	dash, ok := s.sessions.Get(id)
	if !ok {
		logger.DebugContext(ctx, "Tab click for unknown dashboard session")
		NotFoundError("This dashboard has expired. Reloading.").Refresh().Write(w)
		return
	}

	frag, err := dash.Click(group, option)
	switch {
	case errors.Is(err, widgets.ErrUnknownGroup), errors.Is(err, tabs.ErrUnknownOption):
		logger.WarnContext(ctx, "Tab click rejected", log.NewFields().
			WithTab(group, option).
			WithErrorType(log.ErrorTypeNotFound).
			WithError(err).
			ToSlice()...)
		NotFoundError(fmt.Sprintf("No tab %q in %q.", option, group)).Write(w)
		return
	case err != nil:
		log.NewStructuredLogger(logger).LogError(ctx, "Tab click failed", err, log.OpSelect,
			log.NewFields().WithDashboard(id).WithTab(group, option).WithErrorType(log.ErrorTypeInternal))
		InternalServerError("Could not update the chart.").Write(w)
		return
	}

	s.appMetrics.tabClicks.Add(1)
	logger.DebugContext(ctx, "Tab selected", log.NewFields().
		WithTab(group, option).
		WithOperation(log.OpSelect).
		ToSlice()...)

	NewHTMXResponse().
		Retarget("#"+frag.ID).
		Reswap("outerHTML").
		TriggerTabSelected(id, group, option, frag.Changed).
		BodyHTML(frag.HTML).
		Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.started).String(),
	})
}

// handleReady reports whether a page load could be served right now.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.shell == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.source == nil {
		checks["data_source"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["data_source"] = describeSource(s.source)
	}

	checks["sessions"] = map[string]any{
		"entries": s.sessions.Size(),
		"status":  "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	metrics := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"dashboard_loads_total", "Dashboard page loads", "counter", s.appMetrics.loads.Load()},
		{"dashboard_load_failures_total", "Page loads whose data could not be fetched", "counter", s.appMetrics.loadFailures.Load()},
		{"tab_clicks_total", "Applied tab clicks", "counter", s.appMetrics.tabClicks.Load()},
		{"dashboard_sessions", "Live dashboard sessions", "gauge", int64(s.sessions.Size())},
		{"rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateLimitMetrics.TotalHits},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount},
		{"suspicious_requests_total", "Suspicious requests detected", "counter", securityMetrics.SuspiciousRequests},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.started).Seconds())},
	}

	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}

func describeSource(src any) string {
	if str, ok := src.(fmt.Stringer); ok {
		return str.String()
	}
	return "configured"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
