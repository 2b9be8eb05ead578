package playstore

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// prepCookies validates the delivery cookies and returns them both as a
// jar scoped to rawURL and as a plain list.
func prepCookies(rawURL string, cookies []Cookie) (http.CookieJar, []*http.Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, &ProtocolError{Reason: fmt.Sprintf("invalid download url %q: %v", rawURL, err)}
	}

	out := make([]*http.Cookie, 0, len(cookies))
	for i, c := range cookies {
		hc := &http.Cookie{Name: c.Name, Value: c.Value}
		if err := hc.Valid(); err != nil {
			return nil, nil, &ProtocolError{Reason: fmt.Sprintf("malformed download cookie %d: %v", i, err)}
		}
		out = append(out, hc)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	jar.SetCookies(u, out)

	return jar, out, nil
}
