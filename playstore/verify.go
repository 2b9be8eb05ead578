package playstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// VerifyOptions controls VerifyDownload.
type VerifyOptions struct {
	// Gzipped fetches the compressed variant and inflates it while hashing.
	Gzipped bool
	// WrapReader, if set, wraps the response body before hashing. size is
	// the expected transfer size, 0 if unknown.
	WrapReader func(r io.Reader, size int64) io.Reader
}

// VerifyResult reports the outcome of a verification.
type VerifyResult struct {
	Bytes    int64
	SHA1     string
	Expected string
}

// Match reports whether the streamed artifact matches the signature.
func (r *VerifyResult) Match() bool {
	return r.SHA1 == r.Expected
}

// VerifyDownload streams the artifact described by data and compares its
// SHA-1 with the delivery signature. Nothing is written to disk.
func (c *Client) VerifyDownload(ctx context.Context, data *DeliveryData, opts VerifyOptions) (*VerifyResult, error) {
	expected, err := SignatureToSHA1(data.Signature)
	if err != nil {
		return nil, &ProtocolError{Reason: err.Error()}
	}

	rawURL, size := data.DownloadURL, data.DownloadSize
	if opts.Gzipped {
		if data.GzippedDownloadURL == "" {
			return nil, &ProtocolError{Reason: "delivery data has no gzipped download url"}
		}
		rawURL, size = data.GzippedDownloadURL, data.GzippedDownloadSize
	}

	dr, err := c.downloadRequest(rawURL, data.AuthCookies)
	if err != nil {
		return nil, err
	}

	resp, err := c.OpenDownload(ctx, dr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if opts.WrapReader != nil {
		r = opts.WrapReader(r, size)
	}

	if opts.Gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzipped download: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	h := sha1.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read download: %w", err)
	}

	result := &VerifyResult{
		Bytes:    n,
		SHA1:     hex.EncodeToString(h.Sum(nil)),
		Expected: expected,
	}

	c.logger.Debug().
		Int64("bytes", n).
		Bool("gzipped", opts.Gzipped).
		Bool("match", result.Match()).
		Msg("Verified download")

	return result, nil
}
