package abs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
)

// Fetcher defines the server calls the collection loaders depend on.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchAudiobooks(ctx context.Context, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error)
	FetchSeries(ctx context.Context, page int, order library.SeriesSortOrder, ascending bool, lib *library.Library) ([]library.Series, int, error)
	FetchPodcasts(ctx context.Context, page int, ascending bool, lib *library.Library) ([]library.Podcast, int, error)
	FetchAudiobooksInSeries(ctx context.Context, seriesID string, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

var (
	// ErrUnauthorized is returned when the server rejects the API token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnsupportedServer is returned when the server is too old for paged listings.
	ErrUnsupportedServer = errors.New("unsupported server version")
	// ErrLibraryNotFound is returned by ResolveLibrary when nothing matches.
	ErrLibraryNotFound = errors.New("library not found")
)

// Client talks to the Audiobookshelf HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
	log       zerolog.Logger

	timeout  time.Duration
	retryMax int
}

const (
	defaultServerURL   = "127.0.0.1:13378"
	defaultUserAgent   = "shelver/0.1"
	defaultTimeout     = 10 * time.Second
	defaultRetryMax    = 2
	minServerVersion   = ">= 2.0.0"
	seriesFilterPrefix = "series."
	pageLimit          = lazyload.PageSize
)

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes request and retry logging to log.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetryMax sets how often idempotent requests are retried by the
// transport on connection errors and 5xx responses.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

// NewClient builds a Client for the server at serverURL using token for auth.
func NewClient(serverURL, token string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		token:     strings.TrimSpace(token),
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
		timeout:   defaultTimeout,
		retryMax:  defaultRetryMax,
	}
	for _, opt := range opts {
		opt(c)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{Timeout: c.timeout}
	retryClient.RetryMax = c.retryMax
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = retryLogger{log: c.log}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.http = retryClient.StandardClient()

	return c, nil
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchStatus retrieves the server's version information. It does not need a token.
func (c *Client) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StatusResponse
	if err := c.do(ctx, "/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CheckServer verifies that the server is reachable and new enough.
func (c *Client) CheckServer(ctx context.Context) (*StatusResponse, error) {
	status, err := c.FetchStatus(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(status.ServerVersion); err != nil {
		return status, err
	}
	return status, nil
}

// FetchLibraries lists the libraries visible to the token.
func (c *Client) FetchLibraries(ctx context.Context) ([]library.Library, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload LibrariesResponse
	if err := c.do(ctx, "/api/libraries", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]library.Library, 0, len(payload.Libraries))
	for _, lib := range payload.Libraries {
		out = append(out, lib.toLibrary())
	}
	return out, nil
}

// ResolveLibrary finds a library by id or case-insensitive name. An empty
// key selects the first book library, falling back to the first library.
func (c *Client) ResolveLibrary(ctx context.Context, key string) (*library.Library, error) {
	libs, err := c.FetchLibraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	lib, ok := pickLibrary(libs, key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLibraryNotFound, key)
	}
	return &lib, nil
}

func pickLibrary(libs []library.Library, key string) (library.Library, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		for _, lib := range libs {
			if lib.MediaType == library.MediaBook {
				return lib, true
			}
		}
		if len(libs) > 0 {
			return libs[0], true
		}
		return library.Library{}, false
	}
	for _, lib := range libs {
		if lib.ID == key {
			return lib, true
		}
	}
	for _, lib := range libs {
		if strings.EqualFold(lib.Name, key) {
			return lib, true
		}
	}
	return library.Library{}, false
}

// FetchAudiobooks retrieves one page of a book library.
func (c *Client) FetchAudiobooks(ctx context.Context, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error) {
	query := pageQuery(page)
	query.Set("sort", order.QueryValue())
	query.Set("desc", descValue(ascending))
	return c.fetchAudiobooks(ctx, lib, query)
}

// FetchAudiobooksInSeries retrieves one page of the books belonging to a series.
// The series-position order is the server's default for this filter and is
// not sent explicitly.
func (c *Client) FetchAudiobooksInSeries(ctx context.Context, seriesID string, page int, order library.AudiobookSortOrder, ascending bool, lib *library.Library) ([]library.Audiobook, int, error) {
	if strings.TrimSpace(seriesID) == "" {
		return nil, 0, fmt.Errorf("series id required")
	}
	query := pageQuery(page)
	query.Set("filter", seriesFilterPrefix+base64.StdEncoding.EncodeToString([]byte(seriesID)))
	if order != library.SortSeriesName && order != "" {
		query.Set("sort", order.QueryValue())
	}
	query.Set("desc", descValue(ascending))
	return c.fetchAudiobooks(ctx, lib, query)
}

// FetchSeries retrieves one page of the series in a library.
func (c *Client) FetchSeries(ctx context.Context, page int, order library.SeriesSortOrder, ascending bool, lib *library.Library) ([]library.Series, int, error) {
	if err := requireLibrary(lib); err != nil {
		return nil, 0, err
	}
	query := pageQuery(page)
	query.Set("sort", order.QueryValue())
	query.Set("desc", descValue(ascending))
	query.Set("filter", "all")

	var payload ResultResponse[SeriesPayload]
	if err := c.do(ctx, libraryPath(lib, "series"), query, &payload); err != nil {
		return nil, 0, err
	}
	out := make([]library.Series, 0, len(payload.Results))
	for _, s := range payload.Results {
		out = append(out, s.toSeries(lib.ID))
	}
	return out, payload.Total, nil
}

// FetchPodcasts retrieves one page of a podcast library ordered by title.
func (c *Client) FetchPodcasts(ctx context.Context, page int, ascending bool, lib *library.Library) ([]library.Podcast, int, error) {
	if err := requireLibrary(lib); err != nil {
		return nil, 0, err
	}
	query := pageQuery(page)
	query.Set("sort", "media.metadata.title")
	query.Set("desc", descValue(ascending))
	query.Set("include", "numEpisodesIncomplete")

	var payload ResultResponse[ItemPayload]
	if err := c.do(ctx, libraryPath(lib, "items"), query, &payload); err != nil {
		return nil, 0, err
	}
	out := make([]library.Podcast, 0, len(payload.Results))
	for _, item := range payload.Results {
		out = append(out, item.toPodcast())
	}
	return out, payload.Total, nil
}

func (c *Client) fetchAudiobooks(ctx context.Context, lib *library.Library, query url.Values) ([]library.Audiobook, int, error) {
	if err := requireLibrary(lib); err != nil {
		return nil, 0, err
	}
	var payload ResultResponse[ItemPayload]
	if err := c.do(ctx, libraryPath(lib, "items"), query, &payload); err != nil {
		return nil, 0, err
	}
	out := make([]library.Audiobook, 0, len(payload.Results))
	// Every result is kept, even malformed ones, so page lengths stay
	// aligned with what the server returned.
	for _, item := range payload.Results {
		out = append(out, item.toAudiobook())
	}
	return out, payload.Total, nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + path
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", requestID).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("api %s: %w (status %d)", path, ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pageQuery(page int) url.Values {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(pageLimit))
	values.Set("page", strconv.Itoa(page))
	return values
}

func descValue(ascending bool) string {
	if ascending {
		return "0"
	}
	return "1"
}

func libraryPath(lib *library.Library, suffix string) string {
	return "/api/libraries/" + lib.ID + "/" + suffix
}

func requireLibrary(lib *library.Library) error {
	if lib == nil || strings.TrimSpace(lib.ID) == "" {
		return fmt.Errorf("library required")
	}
	return nil
}

func checkVersion(raw string) error {
	version, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: parse %q: %v", ErrUnsupportedServer, raw, err)
	}
	constraint, err := semver.NewConstraint(minServerVersion)
	if err != nil {
		return fmt.Errorf("parse version constraint: %w", err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedServer, version, minServerVersion)
	}
	return nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server_url %q: %w", serverURL, err)
	}
	// Servers behind a reverse proxy may live under a sub path.
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
