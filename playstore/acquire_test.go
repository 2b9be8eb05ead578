package playstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/gplay/protocol"
)

func viberDelivery(downloadURL string) *protocol.AppDeliveryData {
	return &protocol.AppDeliveryData{
		DownloadURL:  downloadURL,
		DownloadSize: 31457280,
		Signature:    "AbCd-_0123456789abcdefABCDEF",
		DownloadAuthCookie: []*protocol.HTTPCookie{
			{Name: "MarketDA", Value: "17653801427712034456"},
		},
		AdditionalFile: []*protocol.AppFileMetadata{
			{FileType: 0, VersionCode: 120263, Size: 1024, DownloadURL: downloadURL + "/main.obb"},
		},
	}
}

func deliveryEnvelope(data *protocol.AppDeliveryData) *protocol.ResponseWrapper {
	return &protocol.ResponseWrapper{Payload: &protocol.Payload{
		DeliveryResponse: &protocol.DeliveryResponse{AppDeliveryData: data},
	}}
}

func buyEnvelope(buy *protocol.BuyResponse) *protocol.ResponseWrapper {
	return &protocol.ResponseWrapper{Payload: &protocol.Payload{BuyResponse: buy}}
}

func TestDownloadInfo_EntitledDelivery(t *testing.T) {
	const downloadURL = "https://play.googleapis.com/download/by-token/download?token=abc"
	var purchases atomic.Int32

	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery":
			q := r.URL.Query()
			assert.Equal(t, "com.viber.voip", q.Get("doc"))
			assert.Equal(t, "120263", q.Get("vc"))
			assert.Equal(t, "1", q.Get("ot"))
			writeEnvelope(w, deliveryEnvelope(viberDelivery(downloadURL)))
		case "/purchase":
			purchases.Add(1)
		}
	})
	client := newTestClient(t, server.URL, nil)

	data, err := client.DownloadInfo(context.Background(), "com.viber.voip", 120263)
	require.NoError(t, err)
	assert.Equal(t, downloadURL, data.DownloadURL)
	assert.Equal(t, []Cookie{{Name: "MarketDA", Value: "17653801427712034456"}}, data.AuthCookies)
	assert.Equal(t, int64(31457280), data.DownloadSize)
	assert.Equal(t, "AbCd-_0123456789abcdefABCDEF", data.Signature)
	assert.Zero(t, purchases.Load())
}

func TestDownloadInfo_PaidApp(t *testing.T) {
	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery":
			writeEnvelope(w, deliveryEnvelope(nil))
		case "/purchase":
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "ot=1&doc=com.mojang.minecraftpe&vc=740140009", string(body))
			writeEnvelope(w, buyEnvelope(&protocol.BuyResponse{
				CheckoutInfo: &protocol.CheckoutInfo{Item: &protocol.LineItem{
					Amount: &protocol.Money{Micros: 6990000, CurrencyCode: "USD", FormattedAmount: "$6.99"},
				}},
			}))
		}
	})
	client := newTestClient(t, server.URL, nil)

	_, err := client.DownloadInfo(context.Background(), "com.mojang.minecraftpe", 740140009)
	require.Error(t, err)

	var notFree *AppNotFreeError
	require.True(t, errors.As(err, &notFree))
	assert.Equal(t, "$6.99", notFree.Price)
	assert.Equal(t, "com.mojang.minecraftpe", notFree.Package)
}

func TestDownloadInfo_PurchaseGrantsDelivery(t *testing.T) {
	const downloadURL = "https://play.googleapis.com/download/purchased"
	var purchases atomic.Int32

	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery":
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusForbidden)
		case "/purchase":
			purchases.Add(1)
			writeEnvelope(w, buyEnvelope(&protocol.BuyResponse{
				PurchaseStatusResponse: &protocol.PurchaseStatusResponse{
					Status:          1,
					AppDeliveryData: viberDelivery(downloadURL),
				},
			}))
		}
	})
	client := newTestClient(t, server.URL, nil)

	data, err := client.DownloadInfo(context.Background(), "com.viber.voip", 120263)
	require.NoError(t, err)
	assert.Equal(t, downloadURL, data.DownloadURL)
	assert.Equal(t, int32(1), purchases.Load())
}

func TestDownloadInfo_AcknowledgementFallsBackToDelivery(t *testing.T) {
	const downloadURL = "https://play.googleapis.com/download/after-ack"
	var deliveries atomic.Int32

	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery":
			if deliveries.Add(1) == 1 {
				writeEnvelope(w, deliveryEnvelope(nil))
				return
			}
			writeEnvelope(w, deliveryEnvelope(viberDelivery(downloadURL)))
		case "/purchase":
			writeEnvelope(w, buyEnvelope(&protocol.BuyResponse{
				PurchaseStatusResponse: &protocol.PurchaseStatusResponse{
					AppDeliveryData: &protocol.AppDeliveryData{DownloadURL: "https://ack.invalid"},
				},
			}))
		}
	})
	client := newTestClient(t, server.URL, func(c *Config) { c.UseCache = true })

	data, err := client.DownloadInfo(context.Background(), "com.viber.voip", 120263)
	require.NoError(t, err)
	assert.Equal(t, downloadURL, data.DownloadURL)
	assert.Equal(t, int32(2), deliveries.Load())
}

func TestDownloadInfo_PurchaseStatusWithoutDeliveryData(t *testing.T) {
	var deliveries atomic.Int32

	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery":
			deliveries.Add(1)
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusForbidden)
		case "/purchase":
			writeEnvelope(w, buyEnvelope(&protocol.BuyResponse{
				PurchaseStatusResponse: &protocol.PurchaseStatusResponse{Status: 1},
			}))
		}
	})
	client := newTestClient(t, server.URL, nil)

	_, err := client.DownloadInfo(context.Background(), "com.viber.voip", 120263)
	var protoErr *ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Contains(t, protoErr.Reason, "no delivery data")
	assert.Equal(t, int32(1), deliveries.Load())
}

func TestDownloadInfo_CancelledContextSkipsPurchase(t *testing.T) {
	var purchases atomic.Int32
	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/purchase" {
			purchases.Add(1)
		}
		writeEnvelope(w, deliveryEnvelope(nil))
	})
	client := newTestClient(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.DownloadInfo(ctx, "com.viber.voip", 120263)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, purchases.Load())
}

func TestCompleteDownloadInfo(t *testing.T) {
	const downloadURL = "https://play.googleapis.com/download/by-token/download?token=abc"
	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, deliveryEnvelope(viberDelivery(downloadURL)))
	})
	client := newTestClient(t, server.URL, nil)

	dr, err := client.CompleteDownloadInfo(context.Background(), "com.viber.voip", 120263)
	require.NoError(t, err)
	assert.Equal(t, downloadURL, dr.URL)
	assert.Equal(t, DefaultDownloadUserAgent, dr.Header.Get("User-Agent"))
	assert.Equal(t, "identity", dr.Header.Get("Accept-Encoding"))
	require.Len(t, dr.Cookies, 1)
	assert.Equal(t, "MarketDA", dr.Cookies[0].Name)

	u, err := url.Parse(downloadURL)
	require.NoError(t, err)
	jarCookies := dr.Jar.Cookies(u)
	require.Len(t, jarCookies, 1)
	assert.Equal(t, "17653801427712034456", jarCookies[0].Value)

	other, err := url.Parse("https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, dr.Jar.Cookies(other))
}

func TestCompleteDownloadInfo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*protocol.AppDeliveryData)
	}{
		{
			name:   "missing url",
			mutate: func(d *protocol.AppDeliveryData) { d.DownloadURL = "" },
		},
		{
			name:   "missing cookies",
			mutate: func(d *protocol.AppDeliveryData) { d.DownloadAuthCookie = nil },
		},
		{
			name: "malformed cookie name",
			mutate: func(d *protocol.AppDeliveryData) {
				d.DownloadAuthCookie = []*protocol.HTTPCookie{{Name: "bad name", Value: "v"}}
			},
		},
		{
			name: "malformed cookie value",
			mutate: func(d *protocol.AppDeliveryData) {
				d.DownloadAuthCookie = []*protocol.HTTPCookie{{Name: "MarketDA", Value: "a\"b;c"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := viberDelivery("https://play.googleapis.com/download")
			tt.mutate(data)
			_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, deliveryEnvelope(data))
			})
			client := newTestClient(t, server.URL, nil)

			_, err := client.CompleteDownloadInfo(context.Background(), "com.viber.voip", 120263)
			require.Error(t, err)
			var protoErr *ProtocolError
			assert.True(t, errors.As(err, &protoErr), "got %T: %v", err, err)
		})
	}
}

func TestAdditionalFileCompleteDownloadInfo(t *testing.T) {
	const downloadURL = "https://play.googleapis.com/download"
	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, deliveryEnvelope(viberDelivery(downloadURL)))
	})
	client := newTestClient(t, server.URL, nil)
	ctx := context.Background()

	dr, err := client.AdditionalFileCompleteDownloadInfo(ctx, "com.viber.voip", 120263, 0)
	require.NoError(t, err)
	assert.Equal(t, downloadURL+"/main.obb", dr.URL)

	for _, index := range []int{1, -1} {
		t.Run(fmt.Sprintf("index %d", index), func(t *testing.T) {
			_, err := client.AdditionalFileCompleteDownloadInfo(ctx, "com.viber.voip", 120263, index)
			var idxErr *IndexError
			require.True(t, errors.As(err, &idxErr))
			assert.Equal(t, index, idxErr.Index)
			assert.Equal(t, 1, idxErr.Len)
		})
	}
}

func TestDownloadRequestFor(t *testing.T) {
	const downloadURL = "https://play.googleapis.com/download"
	client := newTestClient(t, "http://127.0.0.1:0", nil)
	data := newDeliveryData(viberDelivery(downloadURL))

	artifact, err := client.DownloadRequestFor(data, -1)
	require.NoError(t, err)
	assert.Equal(t, downloadURL, artifact.URL)

	extra, err := client.DownloadRequestFor(data, 0)
	require.NoError(t, err)
	assert.Equal(t, downloadURL+"/main.obb", extra.URL)
	require.Len(t, extra.Cookies, 1)
	assert.Equal(t, "MarketDA", extra.Cookies[0].Name)

	_, err = client.DownloadRequestFor(data, 3)
	var idxErr *IndexError
	require.True(t, errors.As(err, &idxErr))
	assert.Equal(t, 1, idxErr.Len)
}

func TestOpenDownload(t *testing.T) {
	_, download := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("MarketDA")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.Equal(t, "17653801427712034456", cookie.Value)
		assert.Equal(t, DefaultDownloadUserAgent, r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "PK\x03\x04")
	})
	_, server := newFDFEStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, deliveryEnvelope(viberDelivery(download.URL+"/apk")))
	})
	client := newTestClient(t, server.URL, nil)
	ctx := context.Background()

	dr, err := client.CompleteDownloadInfo(ctx, "com.viber.voip", 120263)
	require.NoError(t, err)

	resp, err := client.OpenDownload(ctx, dr)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04", string(body))

	dr.URL = download.URL + "/missing"
	_, err = client.OpenDownload(ctx, dr)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, reqErr.IsNotFound())
}
