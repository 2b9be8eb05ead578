package playstore

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/gplay/protocol"
)

// Concurrency limits for fan-out lookups
const (
	DefaultConcurrency = 10
	MaxBulkConcurrency = 4
)

// LookupError records a package whose lookup failed during a batch.
type LookupError struct {
	Package string
	Err     error
}

// DetailsResult is the outcome of a batch of detail lookups. Docs is
// index-aligned with the requested packages; failed lookups leave nil.
type DetailsResult struct {
	Docs   []*protocol.Document
	Failed []LookupError
}

// DetailsMany fetches details for each package concurrently. A failed
// lookup does not stop the others.
func (c *Client) DetailsMany(ctx context.Context, pkgs []string) DetailsResult {
	result := DetailsResult{Docs: make([]*protocol.Document, len(pkgs))}
	if len(pkgs) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)

	var mu sync.Mutex

	for i, pkg := range pkgs {
		g.Go(func() error {
			doc, err := c.Details(ctx, pkg)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("package", pkg).
					Msg("Failed to get details")
				mu.Lock()
				result.Failed = append(result.Failed, LookupError{Package: pkg, Err: err})
				mu.Unlock()
				return nil
			}
			result.Docs[i] = doc
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// BulkDetailsAll looks up any number of packages by splitting them into
// MaxBulkPackages sized chunks fetched concurrently. Order is kept.
func (c *Client) BulkDetailsAll(ctx context.Context, pkgs []string) ([]*protocol.Document, error) {
	docs := make([]*protocol.Document, len(pkgs))
	if len(pkgs) == 0 {
		return docs, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxBulkConcurrency)

	for start := 0; start < len(pkgs); start += MaxBulkPackages {
		end := min(start+MaxBulkPackages, len(pkgs))
		g.Go(func() error {
			chunk, err := c.BulkDetails(ctx, pkgs[start:end])
			if err != nil {
				return err
			}
			copy(docs[start:end], chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
