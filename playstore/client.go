package playstore

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"

	"github.com/s0up4200/gplay/clock"
	"github.com/s0up4200/gplay/protocol"
)

// Config holds everything needed to talk to the store backend. Zero
// values fall back to the Default* constants.
type Config struct {
	// Username and Password are optional when AuthToken is set.
	Username string
	Password string
	// DeviceID is the hex android id of the emulated device.
	DeviceID string
	// AuthToken seeds the session so no login is needed.
	AuthToken string
	// PublicKey is the base64 login key blob.
	PublicKey string

	BaseURL           string
	LoginURL          string
	Host              string
	Country           string
	Language          string
	SDKVersion        string
	UserAgent         string
	DownloadUserAgent string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration
	// ProxyURL accepts http, https and socks5 schemes.
	ProxyURL string
	// HTTPClient replaces the built-in client. Timeout and ProxyURL are
	// ignored when it is set.
	HTTPClient *http.Client

	UseCache        bool
	PrefetchTTL     time.Duration
	DisablePrefetch bool
	Clock           clock.Clock
}

func (c Config) withDefaults() Config {
	if c.PublicKey == "" {
		c.PublicKey = DefaultPublicKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.LoginURL == "" {
		c.LoginURL = DefaultLoginURL
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Country == "" {
		c.Country = DefaultCountry
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.SDKVersion == "" {
		c.SDKVersion = DefaultSDKVersion
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.DownloadUserAgent == "" {
		c.DownloadUserAgent = DefaultDownloadUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PrefetchTTL == 0 {
		c.PrefetchTTL = DefaultPrefetchTTL
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	return c
}

// Client is a store API client. It is safe for concurrent use.
type Client struct {
	cfg        Config
	auth       *AuthSession
	dispatcher *Dispatcher
	cache      *ResponseCache
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new store client. No network call is made until
// the first request.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()

	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", ErrInvalidConfig)
	}
	if cfg.AuthToken == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, ErrMissingCredentials
	}

	publicKey, err := DecodePublicKey(cfg.PublicKey)
	if err != nil {
		return nil, err
	}
	if _, err := ParsePublicKey(publicKey); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient, err = newHTTPClient(cfg.Timeout, cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
	}

	client := &Client{
		cfg:        cfg,
		auth:       newAuthSession(cfg, httpClient, publicKey, logger),
		dispatcher: newDispatcher(cfg, httpClient, logger),
		httpClient: httpClient,
		logger:     logger,
	}
	if cfg.UseCache {
		client.cache = NewResponseCache(cfg.PrefetchTTL, cfg.Clock, logger)
	}

	return client, nil
}

func newHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if err := configureProxy(transport, proxyURL); err != nil {
			return nil, err
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

func configureProxy(transport *http.Transport, proxyURL string) error {
	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("%w: invalid proxy URL: %v", ErrInvalidConfig, err)
	}

	switch parsedURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsedURL)
	case "socks5":
		var auth *proxy.Auth
		if parsedURL.User != nil {
			password, _ := parsedURL.User.Password()
			auth = &proxy.Auth{User: parsedURL.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 proxy: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	default:
		return fmt.Errorf("%w: unsupported proxy scheme: %s", ErrInvalidConfig, parsedURL.Scheme)
	}

	return nil
}

// Login performs the handshake. Without force it returns the held token
// if there is one.
func (c *Client) Login(ctx context.Context, force bool) (string, error) {
	return c.auth.Login(ctx, force)
}

// AuthToken returns the current session token, or "".
func (c *Client) AuthToken() string {
	return c.auth.Token()
}

// InvalidateCache drops every memoized response.
func (c *Client) InvalidateCache() {
	if c.cache != nil {
		c.cache.Invalidate()
	}
}

// CachedKeys lists the fingerprints currently held by the cache.
func (c *Client) CachedKeys() []string {
	if c.cache == nil {
		return nil
	}
	return c.cache.Keys()
}

// execute logs in if needed, dispatches through the cache and decodes
// the envelope. Prefetch entries are absorbed into the cache.
func (c *Client) execute(ctx context.Context, r Request, memoize bool) (*protocol.ResponseWrapper, error) {
	var (
		body []byte
		err  error
	)
	if c.cache != nil && memoize {
		body, err = c.cache.Do(ctx, r.Fingerprint(), func(ctx context.Context) ([]byte, error) {
			return c.dispatch(ctx, r)
		})
	} else {
		body, err = c.dispatch(ctx, r)
	}
	if err != nil {
		return nil, err
	}

	env, err := protocol.DecodeResponse(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && len(env.PreFetch) > 0 {
		c.cache.InstallPrefetch(env.PreFetch)
	}
	return env, nil
}

func (c *Client) dispatch(ctx context.Context, r Request) ([]byte, error) {
	token, err := c.auth.Login(ctx, false)
	if err != nil {
		return nil, err
	}
	return c.dispatcher.Dispatch(ctx, r, token)
}

// forget drops a resolved cache entry for r.
func (c *Client) forget(r Request) {
	if c.cache != nil {
		c.cache.Forget(r.Fingerprint())
	}
}

// Details fetches the document for a package.
func (c *Client) Details(ctx context.Context, pkg string) (*protocol.Document, error) {
	env, err := c.execute(ctx, Request{Path: "details", Query: map[string]string{"doc": pkg}}, true)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadDetails || env.Payload.DetailsResponse.Doc == nil {
		return nil, &ProtocolError{Reason: "details response has no document"}
	}
	return env.Payload.DetailsResponse.Doc, nil
}

// BulkDetails looks up up to MaxBulkPackages packages in one call. The
// result is index-aligned with pkgs; unknown packages yield nil.
func (c *Client) BulkDetails(ctx context.Context, pkgs []string) ([]*protocol.Document, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}
	if len(pkgs) > MaxBulkPackages {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPackages, len(pkgs), MaxBulkPackages)
	}

	body := (&protocol.BulkDetailsRequest{
		Docid:            pkgs,
		IncludeChildDocs: true,
		IncludeDetails:   true,
	}).Marshal()

	// every bulk POST shares one fingerprint, so these are never memoized
	env, err := c.execute(ctx, Request{Path: "bulkDetails", Body: body, ContentType: contentTypeProtobuf}, false)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadBulkDetails {
		return nil, &ProtocolError{Reason: "bulk details response has no entries"}
	}

	docs := make([]*protocol.Document, len(pkgs))
	for i, entry := range env.Payload.BulkDetailsResponse.Entry {
		if i >= len(docs) {
			break
		}
		if entry != nil {
			docs[i] = entry.Doc
		}
	}
	return docs, nil
}

// Related lists documents the store recommends alongside pkg.
func (c *Client) Related(ctx context.Context, pkg string) ([]*protocol.Document, error) {
	env, err := c.execute(ctx, Request{
		Path:  "rec",
		Query: map[string]string{"doc": pkg, "rt": "1", "c": "3"},
	}, true)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadList {
		return nil, &ProtocolError{Reason: "related response has no list"}
	}
	return flatten(env.Payload.ListResponse.Doc), nil
}

// Search queries the store. n defaults to 20 and is capped at 100.
func (c *Client) Search(ctx context.Context, term string, n, offset int) ([]*protocol.Document, error) {
	env, err := c.execute(ctx, Request{
		Path: "search",
		Query: map[string]string{
			"q": term,
			"c": "3",
			"n": strconv.Itoa(clampResults(n, maxSearchResults)),
			"o": strconv.Itoa(max(offset, 0)),
		},
	}, true)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadSearch {
		return nil, &ProtocolError{Reason: "search response has no results"}
	}
	return flatten(env.Payload.SearchResponse.Doc), nil
}

// Reviews returns one page of reviews. n is capped at 20.
func (c *Client) Reviews(ctx context.Context, pkg string, n, offset int) ([]*protocol.Review, error) {
	env, err := c.execute(ctx, Request{
		Path: "rev",
		Query: map[string]string{
			"doc": pkg,
			"c":   "3",
			"n":   strconv.Itoa(clampResults(n, maxReviewResults)),
			"o":   strconv.Itoa(max(offset, 0)),
		},
	}, true)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadReview {
		return nil, &ProtocolError{Reason: "reviews response has no page"}
	}
	if page := env.Payload.ReviewResponse.GetResponse; page != nil {
		return page.Review, nil
	}
	return nil, nil
}

// flatten expands container documents (search clusters, rec lists) into
// their children.
func flatten(docs []*protocol.Document) []*protocol.Document {
	var out []*protocol.Document
	for _, d := range docs {
		if d == nil {
			continue
		}
		if len(d.Child) > 0 && d.AppDetails() == nil {
			out = append(out, flatten(d.Child)...)
			continue
		}
		out = append(out, d)
	}
	return out
}

func clampResults(n, limit int) int {
	if n <= 0 {
		n = defaultResults
	}
	if n > limit {
		return limit
	}
	return n
}
