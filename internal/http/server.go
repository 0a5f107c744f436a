package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"finboard/internal/aggregate"
	"finboard/internal/cache"
	"finboard/internal/chart"
	"finboard/internal/fetch"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/view"
	"finboard/internal/widgets"
	appweb "finboard/web"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 1000
	staticMaxAge       = 3600
)

// Options configures a Server. Zero values get defaults.
type Options struct {
	Addr        string
	Source      fetch.Source
	Anchors     view.Anchors
	View        aggregate.Options
	Charts      chart.Library
	SessionTTL  time.Duration
	MaxSessions int
	RateLimit   ratelimit.Config
	Logger      *log.Logger
}

// Server serves dashboard pages and the tab-click endpoint. Every page load
// gets its own widgets.Dashboard, kept in an LRU session cache until it has
// been idle for SessionTTL.
type Server struct {
	http.Server
	opts     Options
	shell    *appweb.Shell
	source   fetch.Source
	logger   *log.Logger
	sessions *cache.LRUCache[*widgets.Dashboard]
	cacheMgr *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       appMetrics
	now              func() time.Time

	shutdownOnce sync.Once
}

type appMetrics struct {
	started      time.Time
	loads        atomic.Int64
	loadFailures atomic.Int64
	tabClicks    atomic.Int64
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.Charts == nil {
		opts.Charts = chart.ChartJS{}
	}
	opts.Anchors = view.DefaultAnchors().Merge(opts.Anchors)

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		opts:             opts,
		source:           opts.Source,
		logger:           logger,
		sessions:         cache.NewLRUCache[*widgets.Dashboard](opts.MaxSessions, opts.SessionTTL),
		cacheMgr:         cache.NewManager(opts.Logger),
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		securityDetector: security.NewDetector(),
		now:              time.Now,
	}
	s.appMetrics.started = time.Now()
	s.traceMiddleware = trace.NewMiddleware(opts.Logger, s.securityDetector.ExtractClientIP)

	s.cacheMgr.Register(s.sessions)
	s.cacheMgr.StartCleanup(sweepInterval(opts.SessionTTL))

	shell, err := appweb.NewShell()
	if err != nil {
		logger.Warn("Failed parsing templates",
			log.FieldComponent, log.ComponentTemplate,
			log.FieldError, err.Error())
	}
	s.shell = shell

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)

	mux.Handle("GET /{$}", limit(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("GET /dashboard", limit(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("POST /ui/dashboards/{id}/tabs/{group}/{option}", limit(http.HandlerFunc(s.handleTab)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var handler http.Handler = mux
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(logger)(handler)
	s.Handler = handler

	return s
}

// sweepInterval runs the expiry sweep a few times per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Sessions reports how many dashboards are live.
func (s *Server) Sessions() int {
	return s.sessions.Size()
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Rate limit exceeded",
		log.NewFields().
			WithClientIP(s.securityDetector.ExtractClientIP(r)).
			WithHTTPRequest(r.Method, r.URL.Path, "", "", "").
			ToSlice()...)
	TooManyRequestsError("Too many requests. Please try again in a minute.").Write(w)
}
