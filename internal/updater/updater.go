package updater

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.github.com"

// Release is the subset of a GitHub release the check needs.
type Release struct {
	Version   string    `json:"tag_name"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Checker compares the running version with the latest published release.
type Checker struct {
	currentVersion string
	repo           string
	apiBase        string
	cacheDir       string
	maxAge         time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
	clock          func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) {
		ch.httpClient = c
	}
}

// WithAPIBase points the checker at another GitHub API host.
func WithAPIBase(base string) Option {
	return func(ch *Checker) {
		ch.apiBase = base
	}
}

// WithCacheDir sets where version-check.json lives. Empty disables caching.
func WithCacheDir(dir string) Option {
	return func(ch *Checker) {
		ch.cacheDir = dir
	}
}

// WithMaxAge sets how long a fetched release is reused.
func WithMaxAge(d time.Duration) Option {
	return func(ch *Checker) {
		ch.maxAge = d
	}
}

// WithClock replaces time.Now (useful for testing cache expiry).
func WithClock(now func() time.Time) Option {
	return func(ch *Checker) {
		ch.clock = now
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(ch *Checker) {
		ch.logger = l
	}
}

// New creates a Checker for repo ("owner/name") running currentVersion.
func New(currentVersion, repo string, opts ...Option) *Checker {
	ch := &Checker{
		currentVersion: currentVersion,
		repo:           repo,
		apiBase:        defaultAPIBase,
		maxAge:         DefaultCacheMaxAge,
		httpClient:     http.DefaultClient,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}
