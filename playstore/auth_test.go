package playstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoginResponse(t *testing.T) {
	fields := ParseLoginResponse("SID=abc\nLSID=def\r\nAuth=tok=en==\n\nnoequals\nExpiry=0")
	assert.Equal(t, map[string]string{
		"sid":    "abc",
		"lsid":   "def",
		"auth":   "tok=en==",
		"expiry": "0",
	}, fields)
}

func loginStub(t *testing.T, calls *atomic.Int32, respond func(w http.ResponseWriter)) string {
	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth" {
			assert.Equal(t, "GoogleLogin auth=fresh-token", r.Header.Get("Authorization"))
			writeEnvelope(w, detailsEnvelope(r.URL.Query().Get("doc")))
			return
		}
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("Email"))
		assert.NotEmpty(t, r.PostForm.Get("EncryptedPasswd"))
		assert.Empty(t, r.PostForm.Get("Passwd"))
		assert.Equal(t, "androidmarket", r.PostForm.Get("service"))
		assert.Equal(t, "HOSTED_OR_GOOGLE", r.PostForm.Get("accountType"))
		assert.Equal(t, "1", r.PostForm.Get("has_permission"))
		assert.Equal(t, "android", r.PostForm.Get("source"))
		assert.Equal(t, "3f1c2a9b8e7d6c5b", r.PostForm.Get("androidId"))
		assert.Equal(t, "com.android.vending", r.PostForm.Get("app"))
		assert.Equal(t, "us", r.PostForm.Get("device_country"))
		assert.Equal(t, "16", r.PostForm.Get("sdk_version"))
		respond(w)
	})
	return server.URL
}

func credentialsConfig(c *Config) {
	c.AuthToken = ""
	c.Username = "user@example.com"
	c.Password = "secret"
}

func TestAuthSession_LoginOnceUnlessForced(t *testing.T) {
	var calls atomic.Int32
	baseURL := loginStub(t, &calls, func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "SID=a\nLSID=b\nAuth=fresh-token\n")
	})
	client := newTestClient(t, baseURL, credentialsConfig)
	ctx := context.Background()

	assert.Empty(t, client.AuthToken())

	token, err := client.Login(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, "fresh-token", client.AuthToken())

	_, err = client.Login(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.Login(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAuthSession_RequestsLogInLazily(t *testing.T) {
	var calls atomic.Int32
	baseURL := loginStub(t, &calls, func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Auth=fresh-token\n")
	})
	client := newTestClient(t, baseURL, credentialsConfig)

	_, err := client.Details(context.Background(), "com.viber.voip")
	require.NoError(t, err)
	_, err = client.Details(context.Background(), "com.whatsapp")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthSession_ConcurrentLoginsShareHandshake(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	baseURL := loginStub(t, &calls, func(w http.ResponseWriter) {
		<-release
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Auth=fresh-token\n")
	})
	client := newTestClient(t, baseURL, credentialsConfig)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := client.Login(context.Background(), true)
			assert.NoError(t, err)
			assert.Equal(t, "fresh-token", token)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthSession_LoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		ctype      string
		body       string
		wantStatus int
	}{
		{
			name:       "rejected",
			status:     http.StatusForbidden,
			ctype:      "text/plain; charset=utf-8",
			body:       "Error=BadAuthentication",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong content type",
			status:     http.StatusOK,
			ctype:      "text/html",
			body:       "Auth=tok",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing auth key",
			status:     http.StatusOK,
			ctype:      "text/plain; charset=utf-8",
			body:       "SID=a\nLSID=b",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			baseURL := loginStub(t, &calls, func(w http.ResponseWriter) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			client := newTestClient(t, baseURL, credentialsConfig)

			_, err := client.Login(context.Background(), false)
			require.Error(t, err)

			var loginErr *LoginError
			require.True(t, errors.As(err, &loginErr))
			assert.Equal(t, tt.wantStatus, loginErr.StatusCode)
			assert.Equal(t, tt.body, loginErr.Body)
			assert.Empty(t, client.AuthToken())
		})
	}
}

func TestAuthSession_SeededTokenSkipsLogin(t *testing.T) {
	var calls atomic.Int32
	baseURL := loginStub(t, &calls, func(w http.ResponseWriter) {
		t.Error("login must not be called")
	})
	client := newTestClient(t, baseURL, nil)

	token, err := client.Login(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	assert.Zero(t, calls.Load())
}

func TestAuthSession_ForceWithoutCredentials(t *testing.T) {
	var calls atomic.Int32
	baseURL := loginStub(t, &calls, func(w http.ResponseWriter) {
		t.Error("login must not be called")
	})
	client := newTestClient(t, baseURL, nil)

	token, err := client.Login(context.Background(), true)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Empty(t, token)
	assert.Zero(t, calls.Load())

	// the seeded token is still held for ordinary requests
	assert.Equal(t, testToken, client.AuthToken())
}
