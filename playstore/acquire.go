package playstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/s0up4200/gplay/protocol"
)

// Cookie is a download authentication cookie.
type Cookie struct {
	Name  string
	Value string
}

// AdditionalFile is an expansion file delivered alongside the main
// artifact.
type AdditionalFile struct {
	FileType    int32
	VersionCode int32
	Size        int64
	DownloadURL string
}

// DeliveryData describes how to fetch an artifact.
type DeliveryData struct {
	DownloadURL         string
	AuthCookies         []Cookie
	DownloadSize        int64
	Signature           string
	AdditionalFiles     []AdditionalFile
	GzippedDownloadURL  string
	GzippedDownloadSize int64
}

func newDeliveryData(d *protocol.AppDeliveryData) *DeliveryData {
	data := &DeliveryData{
		DownloadURL:         d.DownloadURL,
		DownloadSize:        d.DownloadSize,
		Signature:           d.Signature,
		GzippedDownloadURL:  d.GzippedDownloadURL,
		GzippedDownloadSize: d.GzippedDownloadSize,
	}
	for _, c := range d.DownloadAuthCookie {
		if c != nil {
			data.AuthCookies = append(data.AuthCookies, Cookie{Name: c.Name, Value: c.Value})
		}
	}
	for _, f := range d.AdditionalFile {
		if f != nil {
			data.AdditionalFiles = append(data.AdditionalFiles, AdditionalFile{
				FileType:    f.FileType,
				VersionCode: f.VersionCode,
				Size:        f.Size,
				DownloadURL: f.DownloadURL,
			})
		}
	}
	return data
}

// PurchaseOutcome is the result of a purchase call: either delivery
// data, or the price of an item that needs payment.
type PurchaseOutcome struct {
	Delivery *DeliveryData
	Price    string
}

// Free reports whether the purchase granted entitlement.
func (o *PurchaseOutcome) Free() bool {
	return o.Delivery != nil
}

// DownloadRequest is a ready-to-issue artifact download.
type DownloadRequest struct {
	URL     string
	Cookies []*http.Cookie
	Jar     http.CookieJar
	Header  http.Header
}

// NewRequest builds the GET request with headers and cookies attached.
func (r *DownloadRequest) NewRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header = r.Header.Clone()
	for _, c := range r.Cookies {
		req.AddCookie(c)
	}
	return req, nil
}

func deliveryRequest(pkg string, versionCode int) Request {
	return Request{
		Path: "delivery",
		Query: map[string]string{
			"doc": pkg,
			"vc":  strconv.Itoa(versionCode),
			"ot":  "1",
		},
	}
}

// Delivery requests delivery data for an item the account is already
// entitled to.
func (c *Client) Delivery(ctx context.Context, pkg string, versionCode int) (*DeliveryData, error) {
	r := deliveryRequest(pkg, versionCode)
	env, err := c.execute(ctx, r, true)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadDelivery || env.Payload.DeliveryResponse.AppDeliveryData == nil {
		// not entitled; keep the empty answer out of the cache so a later
		// call after purchase hits the server
		c.forget(r)
		return nil, &ProtocolError{Reason: "delivery response has no delivery data"}
	}
	return newDeliveryData(env.Payload.DeliveryResponse.AppDeliveryData), nil
}

// Purchase acquires pkg. Paid items come back as an outcome carrying
// only a price.
func (c *Client) Purchase(ctx context.Context, pkg string, versionCode int) (*PurchaseOutcome, error) {
	body := fmt.Sprintf("ot=1&doc=%s&vc=%d", url.QueryEscape(pkg), versionCode)

	// purchase bodies differ per package but share one fingerprint
	env, err := c.execute(ctx, Request{Path: "purchase", Body: []byte(body)}, false)
	if err != nil {
		return nil, err
	}
	if env.Payload.Kind() != protocol.PayloadBuy {
		return nil, &ProtocolError{Reason: "purchase response has no buy response"}
	}

	buy := env.Payload.BuyResponse
	if buy.PurchaseStatusResponse == nil {
		info := buy.CheckoutInfo
		if info == nil || info.Item == nil || info.Item.Amount == nil {
			return nil, &ProtocolError{Reason: "buy response has neither purchase status nor checkout price"}
		}
		return &PurchaseOutcome{Price: info.Item.Amount.FormattedAmount}, nil
	}
	if buy.PurchaseStatusResponse.AppDeliveryData == nil {
		return nil, &ProtocolError{Reason: "purchase status has no delivery data"}
	}
	return &PurchaseOutcome{Delivery: newDeliveryData(buy.PurchaseStatusResponse.AppDeliveryData)}, nil
}

// DownloadInfo resolves delivery data, purchasing the item first when
// the account holds no entitlement. Paid items fail with
// *AppNotFreeError.
func (c *Client) DownloadInfo(ctx context.Context, pkg string, versionCode int) (*DeliveryData, error) {
	data, err := c.Delivery(ctx, pkg, versionCode)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	c.logger.Debug().Err(err).Str("package", pkg).Msg("Delivery failed, purchasing")

	outcome, err := c.Purchase(ctx, pkg, versionCode)
	if err != nil {
		return nil, err
	}
	if !outcome.Free() {
		return nil, &AppNotFreeError{Package: pkg, Price: outcome.Price}
	}
	if outcome.Delivery.DownloadSize == 0 {
		c.logger.Debug().Str("package", pkg).Msg("Purchase returned no download size, requesting delivery")
		return c.Delivery(ctx, pkg, versionCode)
	}
	return outcome.Delivery, nil
}

// CompleteDownloadInfo returns a request-ready descriptor for the main
// artifact.
func (c *Client) CompleteDownloadInfo(ctx context.Context, pkg string, versionCode int) (*DownloadRequest, error) {
	data, err := c.DownloadInfo(ctx, pkg, versionCode)
	if err != nil {
		return nil, err
	}
	return c.DownloadRequestFor(data, -1)
}

// AdditionalFileCompleteDownloadInfo returns a request-ready descriptor
// for the additional file at index.
func (c *Client) AdditionalFileCompleteDownloadInfo(ctx context.Context, pkg string, versionCode, index int) (*DownloadRequest, error) {
	data, err := c.DownloadInfo(ctx, pkg, versionCode)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, &IndexError{Index: index, Len: len(data.AdditionalFiles)}
	}
	return c.DownloadRequestFor(data, index)
}

// DownloadRequestFor builds a descriptor from already resolved delivery
// data. A negative index selects the main artifact, anything else the
// additional file at that index.
func (c *Client) DownloadRequestFor(data *DeliveryData, index int) (*DownloadRequest, error) {
	if index < 0 {
		if data.DownloadURL == "" {
			return nil, &ProtocolError{Reason: "delivery data has no download url"}
		}
		return c.downloadRequest(data.DownloadURL, data.AuthCookies)
	}

	if index >= len(data.AdditionalFiles) {
		return nil, &IndexError{Index: index, Len: len(data.AdditionalFiles)}
	}
	file := data.AdditionalFiles[index]
	if file.DownloadURL == "" {
		return nil, &ProtocolError{Reason: fmt.Sprintf("additional file %d has no download url", index)}
	}
	return c.downloadRequest(file.DownloadURL, data.AuthCookies)
}

func (c *Client) downloadRequest(rawURL string, cookies []Cookie) (*DownloadRequest, error) {
	if len(cookies) == 0 {
		return nil, &ProtocolError{Reason: "delivery data has no download auth cookie"}
	}

	jar, httpCookies, err := prepCookies(rawURL, cookies)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set("User-Agent", c.cfg.DownloadUserAgent)
	header.Set("Accept-Encoding", "identity")

	return &DownloadRequest{
		URL:     rawURL,
		Cookies: httpCookies,
		Jar:     jar,
		Header:  header,
	}, nil
}

// OpenDownload issues dr and returns the streaming response. The caller
// closes the body.
func (c *Client) OpenDownload(ctx context.Context, dr *DownloadRequest) (*http.Response, error) {
	req, err := dr.NewRequest(ctx)
	if err != nil {
		return nil, err
	}

	// downloads are streamed, so the exchange timeout does not apply
	client := &http.Client{Transport: c.httpClient.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &RequestError{
			Message:    http.StatusText(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
		}
	}
	return resp, nil
}
