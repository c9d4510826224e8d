// Package assetcache serves the board's static shell through a versioned,
// offline-capable cache placed in front of an origin.
package assetcache

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"shuttle.campusbus.org/internal/logging"
	"shuttle.campusbus.org/internal/metrics"
)

// DefaultManifest lists the paths precached on install.
var DefaultManifest = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/icon.png",
	"/lite.html",
}

const (
	DefaultOfflineDocument = "/index.html"
	DefaultOfflineImage    = "/icon.png"
	DefaultMaxEntries      = 64
)

// Config configures a Worker. Only Fetcher is required.
type Config struct {
	CacheName       string
	Manifest        []string
	OfflineDocument string
	OfflineImage    string
	// MaxEntries caps the worker's own cache. Fills beyond it are dropped.
	MaxEntries      int
	Fetcher         Fetcher
	Caches          *Caches
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
}

type Worker struct {
	name     string
	manifest []string
	pages    map[string]bool
	offline  string
	image    string
	max      int
	fetcher  Fetcher
	caches   *Caches
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
	metrics  *metrics.Metrics

	claimed atomic.Bool
	pending sync.WaitGroup
	storeMu sync.Mutex
}

var errOriginUnavailable = errors.New("origin unavailable")

func New(cfg Config) *Worker {
	if cfg.Manifest == nil {
		cfg.Manifest = DefaultManifest
	}
	if cfg.OfflineDocument == "" {
		cfg.OfflineDocument = DefaultOfflineDocument
	}
	if cfg.OfflineImage == "" {
		cfg.OfflineImage = DefaultOfflineImage
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Caches == nil {
		cfg.Caches = NewCaches()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Worker{
		name:     cfg.CacheName,
		manifest: cfg.Manifest,
		pages:    make(map[string]bool),
		offline:  cfg.OfflineDocument,
		image:    cfg.OfflineImage,
		max:      cfg.MaxEntries,
		fetcher:  cfg.Fetcher,
		caches:   cfg.Caches,
		logger:   logger.With(slog.String("component", "asset_worker"), slog.String("cache", cfg.CacheName)),
		metrics:  cfg.Metrics,
	}
	w.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "asset-origin",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			w.logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	for _, path := range cfg.Manifest {
		if path == "/" || strings.HasSuffix(path, ".html") {
			w.pages[path] = true
		}
	}
	return w
}

// CacheName returns the version name of the worker's own cache.
func (w *Worker) CacheName() string { return w.name }

// Claimed reports whether Activate has run.
func (w *Worker) Claimed() bool { return w.claimed.Load() }

// Install precaches the manifest into the worker's cache. A path that cannot
// be fetched is logged and skipped. It returns the number of paths stored.
func (w *Worker) Install(ctx context.Context) int {
	store := w.caches.Open(w.name)
	stored := 0
	for _, path := range w.manifest {
		resp, err := w.fetch(ctx, http.MethodGet, path, nil)
		if err != nil {
			logging.LogError(w.logger, "precache failed", err, slog.String("path", path))
			continue
		}
		if !cacheable(resp.Status) {
			w.logger.Warn("precache skipped", slog.String("path", path), slog.Int("status", resp.Status))
			continue
		}
		store.SetDefault(path, resp.clone())
		stored++
	}
	logging.LogOperation(w.logger, "asset_cache_installed",
		slog.Int("stored", stored),
		slog.Int("manifest", len(w.manifest)))
	return stored
}

// Activate drops every cache other than the worker's own and claims open
// clients. It returns the names of the dropped caches.
func (w *Worker) Activate() []string {
	var dropped []string
	for _, name := range w.caches.Keys() {
		if name == w.name {
			continue
		}
		if w.caches.Delete(name) {
			dropped = append(dropped, name)
		}
	}
	w.claimed.Store(true)
	logging.LogOperation(w.logger, "asset_cache_activated", slog.Any("dropped", dropped))
	return dropped
}

// Wait blocks until every background cache fill has finished.
func (w *Worker) Wait() {
	w.pending.Wait()
}

func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.passthrough(rw, r)
		return
	}
	if isNavigation(r) {
		w.serveNavigation(rw, r)
		return
	}
	w.serveAsset(rw, r)
}

func (w *Worker) passthrough(rw http.ResponseWriter, r *http.Request) {
	resp, err := w.fetch(r.Context(), r.Method, r.URL.RequestURI(), r.Header)
	if err != nil {
		w.unavailable(rw, r, err)
		return
	}
	w.count("network")
	resp.write(rw)
}

// serveNavigation is network-first: a fresh page wins, the cached copy is
// next, and the offline document is last. Only the bare manifest pages are
// stored; a page with a query string is served but never cached.
func (w *Worker) serveNavigation(rw http.ResponseWriter, r *http.Request) {
	resp, err := w.fetch(r.Context(), http.MethodGet, r.URL.RequestURI(), r.Header)
	if err == nil {
		if cacheable(resp.Status) && r.URL.RawQuery == "" && w.pages[r.URL.Path] {
			w.store(r.URL.Path, resp.clone())
		}
		w.count("network")
		resp.write(rw)
		return
	}

	if cached, ok := w.caches.Match(r.URL.Path); ok {
		w.count("cache")
		cached.write(rw)
		return
	}
	if cached, ok := w.caches.Match(w.offline); ok {
		w.count("offline")
		cached.write(rw)
		return
	}
	w.unavailable(rw, r, err)
}

// serveAsset is cache-first, keyed by path. A miss goes to the network and
// the response is stored after it has been written to the client.
func (w *Worker) serveAsset(rw http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if cached, ok := w.caches.Match(key); ok {
		w.count("cache")
		cached.write(rw)
		return
	}

	resp, err := w.fetch(r.Context(), http.MethodGet, r.URL.RequestURI(), r.Header)
	if err != nil {
		if isImage(r.URL.Path) {
			if cached, ok := w.caches.Match(w.image); ok {
				w.count("offline")
				cached.write(rw)
				return
			}
		}
		w.unavailable(rw, r, err)
		return
	}

	w.count("network")
	if cacheable(resp.Status) {
		stored := resp.clone()
		w.pending.Add(1)
		go func() {
			defer w.pending.Done()
			w.store(key, stored)
		}()
	}
	resp.write(rw)
}

func (w *Worker) store(key string, resp *Response) {
	w.storeMu.Lock()
	defer w.storeMu.Unlock()
	c := w.caches.Open(w.name)
	if _, ok := c.Get(key); !ok && c.ItemCount() >= w.max {
		w.logger.Debug("asset cache full", slog.String("path", key), slog.Int("entries", w.max))
		return
	}
	c.SetDefault(key, resp)
}

func (w *Worker) unavailable(rw http.ResponseWriter, r *http.Request, err error) {
	w.count("error")
	logging.LogError(w.logger, "asset unavailable", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
	http.Error(rw, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

func (w *Worker) fetch(ctx context.Context, method, path string, header http.Header) (*Response, error) {
	if w.fetcher == nil {
		return nil, errOriginUnavailable
	}
	out, err := w.breaker.Execute(func() (interface{}, error) {
		return w.fetcher.Fetch(ctx, method, path, header)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}

func (w *Worker) count(source string) {
	if w.metrics == nil {
		return
	}
	w.metrics.AssetRequestsTotal.WithLabelValues(source).Inc()
}

// cacheable accepts 200 and the zero status of an opaque response.
func cacheable(status int) bool {
	return status == http.StatusOK || status == 0
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return true
	}
	return r.URL.Path == "/" || strings.HasSuffix(r.URL.Path, ".html")
}

func isImage(path string) bool {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
