package playstore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Credentials identify the account/device pair used to log in.
type Credentials struct {
	Username string
	Password string
	DeviceID string
}

// AuthSession owns the session token. The handshake runs at most once
// unless forced; concurrent callers share one in-flight login.
type AuthSession struct {
	creds      Credentials
	loginURL   string
	publicKey  []byte
	country    string
	sdkVersion string
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
	group singleflight.Group
}

func newAuthSession(cfg Config, httpClient *http.Client, publicKey []byte, logger zerolog.Logger) *AuthSession {
	return &AuthSession{
		creds: Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
			DeviceID: cfg.DeviceID,
		},
		loginURL:   cfg.LoginURL,
		publicKey:  publicKey,
		country:    cfg.Country,
		sdkVersion: cfg.SDKVersion,
		httpClient: httpClient,
		logger:     logger,
		token:      cfg.AuthToken,
	}
}

// Token returns the current token, or "" if not logged in.
func (s *AuthSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login returns the held token without a network call unless force is
// set or no token is held yet.
func (s *AuthSession) Login(ctx context.Context, force bool) (string, error) {
	if !force {
		if token := s.Token(); token != "" {
			return token, nil
		}
	}

	// forcing without credentials cannot renew the token
	if s.creds.Username == "" || s.creds.Password == "" {
		return "", ErrMissingCredentials
	}

	ch := s.group.DoChan("login", func() (any, error) {
		return s.handshake(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *AuthSession) handshake(ctx context.Context) (string, error) {
	encrypted, err := EncryptCredentials(s.publicKey, s.creds.Username, s.creds.Password)
	if err != nil {
		return "", err
	}

	form := url.Values{
		"Email":           {s.creds.Username},
		"EncryptedPasswd": {encrypted},
		"service":         {service},
		"accountType":     {accountTypeHostedOrGoogle},
		"has_permission":  {"1"},
		"source":          {"android"},
		"androidId":       {s.creds.DeviceID},
		"app":             {androidVending},
		"device_country":  {s.country},
		"operatorCountry": {s.country},
		"lang":            {s.country},
		"sdk_version":     {s.sdkVersion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)

	s.logger.Debug().Str("url", s.loginURL).Str("device_id", s.creds.DeviceID).Msg("Logging in")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &LoginError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if ct := resp.Header.Get("Content-Type"); !strings.EqualFold(ct, contentTypeLogin) {
		return "", &LoginError{
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("unexpected content type %q", ct),
			Body:       string(body),
		}
	}

	fields := ParseLoginResponse(string(body))
	token := fields["auth"]
	if token == "" {
		return "", &LoginError{
			StatusCode: resp.StatusCode,
			Reason:     "missing auth token in server response",
			Body:       string(body),
		}
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Debug().Msg("Login succeeded")
	return token, nil
}

// ParseLoginResponse parses newline separated KEY=value pairs. Keys
// are lower-cased; values keep everything after the first '='.
func ParseLoginResponse(body string) map[string]string {
	out := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		out[strings.ToLower(key)] = value
	}
	return out
}
