package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

type Request struct {
	Method  string
	Url     string
	Form    map[string]string
	Headers map[string]string

	// Where a cached copy of the response lives, e.g. ("courses", "schools")
	CacheCategory string
	CacheKey      string
}

// Fetcher performs a request and returns the raw response body. Bodies of
// non-200 responses are returned as well; the parsers decide what they mean.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

type CollyFetcher struct {
	c *colly.Collector
}

func NewCollyFetcher(c *colly.Collector) *CollyFetcher {
	return &CollyFetcher{c}
}

func (f *CollyFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	c := f.c.Clone() // same collector but without old callbacks
	c.ParseHTTPErrorResponse = true
	c.OnResponse(func(res *colly.Response) {
		body = res.Body
	})

	hdr := http.Header{}
	for k, v := range req.Headers {
		hdr.Set(k, v)
	}
	// colly only falls back to its own user agent when given no headers
	if hdr.Get("User-Agent") == "" {
		hdr.Set("User-Agent", c.UserAgent)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var data io.Reader
	if method == http.MethodPost {
		form := url.Values{}
		for k, v := range req.Form {
			form.Set(k, v)
		}
		data = strings.NewReader(form.Encode())
		if hdr.Get("Content-Type") == "" {
			hdr.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}

	err := c.Request(method, req.Url, data, nil, hdr)
	if body == nil {
		if err == nil {
			err = fmt.Errorf("empty response from %s", req.Url)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", req.Url, err)
	}
	return body, nil
}

// CachedFetcher replays responses stored on disk under their cache key and
// stores fresh ones. Requests without a cache key always go to the network.
type CachedFetcher struct {
	inner Fetcher
	dir   string
}

func NewCachedFetcher(inner Fetcher, dir string) *CachedFetcher {
	return &CachedFetcher{inner, dir}
}

func (f *CachedFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.CacheKey == "" {
		return f.inner.Fetch(ctx, req)
	}

	path := filepath.Join(f.dir, req.CacheCategory, req.CacheKey+".html")
	if body, err := os.ReadFile(path); err == nil {
		return body, nil
	}

	body, err := f.inner.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create cache directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return nil, fmt.Errorf("could not write cache entry %s: %w", path, err)
	}
	return body, nil
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

func fetchDocument(ctx context.Context, f Fetcher, req Request) (*goquery.Document, error) {
	body, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(body))
}
