package admission

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedPath is the route the fixed-window limiter is bound to.
//
// Playlist generation is the only expensive fan-out into the upstream API, so
// it is the only route worth metering per source.
const RateLimitedPath = "/generate-playlist"

// botMarkers are user-agent fragments that identify automated clients.
var botMarkers = []string{
	"bot", "crawl", "spider", "scrape",
	"curl", "wget", "python-requests", "go-http-client", "headless",
}

// shieldMarkers are fragments that trip the anomaly shield, checked against
// the decoded query string and path.
var shieldMarkers = []string{
	"<script", "union select", "../", "%00",
}

// Options tunes an [Engine].
type Options struct {
	Window     time.Duration // fixed rate-limit window per source (default 1m)
	Burst      int           // requests admitted per window (default 1)
	DetectBots bool          // enable user-agent screening
}

// Engine is the local [Protector] implementation.
//
// Rate limiting uses one token-bucket limiter per source address, refilled at
// one burst per window, which behaves as a fixed window of Burst requests.
// Limiter state is process-local and never expires.
type Engine struct {
	opts Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewEngine creates an [Engine] with the given options.
func NewEngine(opts Options) *Engine {
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Engine{
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Decide runs the shield, bot, and rate-limit checks in order and returns the
// first denial, or [Allow].
func (e *Engine) Decide(ctx context.Context, r *http.Request) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	if suspicious(r) {
		return Deny(ReasonShield), nil
	}

	if e.opts.DetectBots && automated(r.UserAgent()) {
		return Deny(ReasonBot), nil
	}

	if r.URL.Path == RateLimitedPath && !e.limiter(sourceAddr(r)).Allow() {
		return Deny(ReasonRateLimited), nil
	}

	return Allow, nil
}

// limiter returns the per-source limiter, creating it on first sight.
func (e *Engine) limiter(source string) *rate.Limiter {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.limiters[source]
	if !ok {
		l = rate.NewLimiter(rate.Every(e.opts.Window), e.opts.Burst)
		e.limiters[source] = l
	}
	return l
}

// automated reports whether the user agent looks like a non-interactive
// client. An empty user agent counts as automated.
func automated(ua string) bool {
	if ua == "" {
		return true
	}
	ua = strings.ToLower(ua)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// suspicious runs the shield pass over the request line.
func suspicious(r *http.Request) bool {
	query := r.URL.RawQuery
	if decoded, err := url.QueryUnescape(query); err == nil {
		query = decoded
	}

	probe := strings.ToLower(query + " " + r.URL.Path)
	for _, marker := range shieldMarkers {
		if strings.Contains(probe, marker) {
			return true
		}
	}
	return false
}

// sourceAddr extracts the client address used as the rate-limit key,
// preferring the forwarded address when present.
func sourceAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
