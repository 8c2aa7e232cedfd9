// Package imagefetch retrieves optional background images over HTTP and
// caches them for the lifetime of a session.
package imagefetch

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	// Remote product shots are frequently webp; imaging itself only
	// registers the stdlib formats.
	_ "github.com/chai2010/webp"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 32 << 20
)

// Fetcher downloads images by URL. Each URL is fetched at most once per
// session; failures are cached as misses so a bad URL is not retried on
// every redraw. All methods are safe for concurrent use.
type Fetcher struct {
	client *http.Client

	mu       sync.Mutex
	cache    map[string]image.Image // nil value = known failure
	inflight map[string]bool
}

// New creates a Fetcher. A zero timeout selects the default.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		cache:    make(map[string]image.Image),
		inflight: make(map[string]bool),
	}
}

// Cached returns the image for a URL if a fetch already completed.
// ok is true for both successes and cached failures (img nil); the caller
// can distinguish a miss-in-progress from a known-bad URL.
func (f *Fetcher) Cached(url string) (img image.Image, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok = f.cache[url]
	return img, ok
}

// Fetch starts a background download of the URL unless it is already
// cached or in flight. done is invoked from the fetch goroutine when the
// result lands in the cache (img nil on failure); callers use it to
// schedule an opportunistic redraw. A redraw never waits on a fetch: it
// reads Cached and proceeds without the background when nothing is there.
func (f *Fetcher) Fetch(url string, done func(img image.Image)) {
	if url == "" {
		return
	}

	f.mu.Lock()
	if img, ok := f.cache[url]; ok {
		f.mu.Unlock()
		if done != nil {
			done(img)
		}
		return
	}
	if f.inflight[url] {
		f.mu.Unlock()
		return
	}
	f.inflight[url] = true
	f.mu.Unlock()

	go func() {
		img, err := f.get(url)
		if err != nil {
			log.Printf("imagefetch: %s: %v", url, err)
			img = nil
		}

		f.mu.Lock()
		f.cache[url] = img
		delete(f.inflight, url)
		f.mu.Unlock()

		if done != nil {
			done(img)
		}
	}()
}

// get performs the HTTP request and decodes the body.
func (f *Fetcher) get(url string) (image.Image, error) {
	// Bare www. URLs appear in real datasets; the HTTP client needs a scheme.
	if len(url) >= 4 && url[:4] == "www." {
		url = "http://" + url
	}

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return img, nil
}
