package playstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/gplay/protocol"
)

// Request fully determines one FDFE call. A non-empty Body makes it a
// POST.
type Request struct {
	Path        string
	Query       map[string]string
	Body        []byte
	ContentType string
}

// Fingerprint returns the canonical cache key: the path, the query
// serialized with sorted keys, and whether a body is present. Bodies
// are not content-addressed, so two POSTs to the same path share a key.
func (r Request) Fingerprint() string {
	return fingerprint(r.Path, r.Query, len(r.Body) > 0)
}

func fingerprint(path string, query map[string]string, post bool) string {
	if query == nil {
		query = map[string]string{}
	}
	// encoding/json writes map keys in sorted order
	canonical, _ := json.Marshal(query)
	return fmt.Sprintf("%s|%s|post=%t", path, canonical, post)
}

// Dispatcher issues single FDFE calls with the canonical header set
// and returns raw response bodies.
type Dispatcher struct {
	baseURL    string
	host       string
	deviceID   string
	language   string
	userAgent  string
	noPrefetch bool
	httpClient *http.Client
	logger     zerolog.Logger
}

func newDispatcher(cfg Config, httpClient *http.Client, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		host:       cfg.Host,
		deviceID:   cfg.DeviceID,
		language:   cfg.Language,
		userAgent:  cfg.UserAgent,
		noPrefetch: cfg.DisablePrefetch,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Dispatch performs the call authenticated with token. Any non-200
// response becomes a *RequestError; nothing is retried here.
func (d *Dispatcher) Dispatch(ctx context.Context, r Request, token string) ([]byte, error) {
	if r.Path == "" {
		return nil, fmt.Errorf("%w: request path is required", ErrInvalidConfig)
	}

	endpoint := fmt.Sprintf("%s/%s", d.baseURL, r.Path)
	if len(r.Query) > 0 {
		params := url.Values{}
		for k, v := range r.Query {
			params.Set(k, v)
		}
		endpoint += "?" + params.Encode()
	}

	method := http.MethodGet
	var body io.Reader
	if len(r.Body) > 0 {
		method = http.MethodPost
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	d.setHeaders(req, token)
	if method == http.MethodPost {
		contentType := r.ContentType
		if contentType == "" {
			contentType = contentTypeForm
		}
		req.Header.Set("Content-Type", contentType)
	}

	d.logger.Debug().
		Str("method", method).
		Str("path", r.Path).
		Interface("query", r.Query).
		Msg("Making FDFE request")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, d.requestError(resp, raw)
	}

	return raw, nil
}

func (d *Dispatcher) setHeaders(req *http.Request, token string) {
	h := req.Header
	h.Set("Accept-Language", d.language)
	h.Set("Authorization", "GoogleLogin auth="+token)
	h.Set("X-DFE-Enabled-Experiments", enabledExperiments)
	h.Set("X-DFE-Unsupported-Experiments", unsupportedExperiments)
	h.Set("X-DFE-Device-Id", d.deviceID)
	h.Set("X-DFE-Client-Id", clientID)
	h.Set("User-Agent", d.userAgent)
	h.Set("X-DFE-SmallestScreenWidthDp", smallestScreenWidthDP)
	h.Set("X-DFE-Filter-Level", filterLevel)
	if d.noPrefetch {
		h.Set("X-DFE-No-Prefetch", "true")
	}
	if d.host != "" {
		req.Host = d.host
	}
}

// requestError extracts the server's message: binary error envelopes
// carry it in ServerCommands, anything else is plain text.
func (d *Dispatcher) requestError(resp *http.Response, raw []byte) *RequestError {
	reqErr := &RequestError{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-gzip", "application/protobuf":
		env, err := protocol.DecodeResponse(raw)
		if err == nil && env.Commands != nil {
			reqErr.Message = env.Commands.DisplayErrorMessage
		} else if err != nil {
			d.logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Failed to decode error envelope")
		}
		if reqErr.Message == "" {
			reqErr.Message = http.StatusText(resp.StatusCode)
		}
	default:
		reqErr.Message = string(raw)
	}

	return reqErr
}
