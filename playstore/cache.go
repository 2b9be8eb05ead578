package playstore

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/gplay/clock"
	"github.com/s0up4200/gplay/protocol"
)

// DefaultPrefetchTTL is how long a prefetch-installed entry lives.
const DefaultPrefetchTTL = 30 * time.Second

// ResponseCache memoizes raw response bodies by request fingerprint.
//
// At most one entry exists per key. A caller that finds a pending entry
// waits on it instead of dispatching, so one key never has two requests
// in flight. Entries written by Install (prefetch) never overwrite an
// existing entry and expire after the configured TTL; entries written by
// Do live until Invalidate or Forget. Failed fetches are dropped when
// they complete so the next caller retries.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	clock   clock.Clock
	ttl     time.Duration
	logger  zerolog.Logger
}

type cacheEntry struct {
	done  chan struct{}
	body  []byte
	err   error
	timer clock.Timer
}

// NewResponseCache creates a cache whose prefetch entries expire after
// ttl on clk. A zero ttl keeps prefetch entries until invalidated.
func NewResponseCache(ttl time.Duration, clk clock.Clock, logger zerolog.Logger) *ResponseCache {
	if clk == nil {
		clk = clock.Real()
	}
	return &ResponseCache{
		entries: make(map[string]*cacheEntry),
		clock:   clk,
		ttl:     ttl,
		logger:  logger,
	}
}

// Do returns the body cached under key, calling fetch when the key is
// absent. fetch runs detached from ctx: cancelling ctx only abandons
// this caller's wait, never the shared request.
func (c *ResponseCache) Do(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{done: make(chan struct{})}
		c.entries[key] = e
	}
	c.mu.Unlock()

	if ok {
		c.logger.Debug().Str("key", key).Msg("Cache hit")
	} else {
		go c.fill(context.WithoutCancel(ctx), key, e, fetch)
	}

	select {
	case <-e.done:
		return e.body, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *ResponseCache) fill(ctx context.Context, key string, e *cacheEntry, fetch func(context.Context) ([]byte, error)) {
	e.body, e.err = fetch(ctx)
	if e.err != nil {
		c.remove(key, e)
	}
	close(e.done)
}

// Install stores a pre-resolved body under key unless the key is
// already occupied, pending or resolved. The first writer wins. It
// reports whether the body was stored.
func (c *ResponseCache) Install(key string, body []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return false
	}

	e := &cacheEntry{done: make(chan struct{}), body: body}
	close(e.done)
	c.entries[key] = e

	if c.ttl > 0 {
		e.timer = c.clock.AfterFunc(c.ttl, func() {
			if c.remove(key, e) {
				c.logger.Debug().Str("key", key).Msg("Prefetch entry expired")
			}
		})
	}
	return true
}

// InstallPrefetch installs every server-pushed entry whose URL has the
// form path?query. It returns the number of entries stored.
func (c *ResponseCache) InstallPrefetch(entries []*protocol.PreFetch) int {
	installed := 0
	for _, p := range entries {
		if p == nil || len(p.Response) == 0 {
			continue
		}
		path, rawQuery, ok := strings.Cut(p.URL, "?")
		if !ok {
			continue
		}
		values, err := url.ParseQuery(rawQuery)
		if err != nil {
			c.logger.Warn().Err(err).Str("url", p.URL).Msg("Skipping prefetch entry with invalid query")
			continue
		}
		query := make(map[string]string, len(values))
		for k, v := range values {
			query[k] = v[0]
		}

		key := fingerprint(path, query, false)
		if c.Install(key, p.Response) {
			installed++
			c.logger.Debug().Str("key", key).Msg("Installed prefetch entry")
		}
	}
	return installed
}

// Forget drops the entry under key if it has resolved.
func (c *ResponseCache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	select {
	case <-e.done:
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.entries, key)
	default:
	}
}

// remove deletes key only if it still maps to e.
func (c *ResponseCache) remove(key string, e *cacheEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[key] != e {
		return false
	}
	delete(c.entries, key)
	return true
}

// Invalidate drops every entry. Callers already waiting on a pending
// entry still receive its result.
func (c *ResponseCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	c.entries = make(map[string]*cacheEntry)
}

// Keys returns the held fingerprints in sorted order.
func (c *ResponseCache) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Strings(keys)
	return keys
}
