package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v62/github"
)

// DefaultPageDelay is the pause between successive page requests.
// It keeps unauthenticated runs under GitHub's rate limit.
const DefaultPageDelay = 1 * time.Second

// Pager fetches every page of a JSON array endpoint by following the
// rel="next" entry of the Link response header.
type Pager struct {
	client *github.Client
	delay  time.Duration
	logger *log.Logger
}

// NewPager creates a Pager issuing requests through client and sleeping
// delay between pages.
func NewPager(client *github.Client, delay time.Duration, logger *log.Logger) *Pager {
	return &Pager{
		client: client,
		delay:  delay,
		logger: logger,
	}
}

// FetchAll requests rawURL with params and keeps following the next link,
// concatenating each page's array in page order. Params are only applied to
// the first request; next links already encode them.
//
// A non-2xx status on any page returns an *HTTPError and no items.
// There is no loop detection: a server repeating the same next link is only
// stopped by cancelling ctx.
func (p *Pager) FetchAll(ctx context.Context, rawURL string, params url.Values) ([]json.RawMessage, error) {
	next, err := withParams(rawURL, params)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	for page := 1; next != ""; page++ {
		if page > 1 {
			if err := sleepContext(ctx, p.delay); err != nil {
				return nil, err
			}
			p.logger.Printf("  Fetching page %d: %s", page, next)
		}
		batch, link, err := p.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
		next = link
	}
	return items, nil
}

func (p *Pager) fetchPage(ctx context.Context, pageURL string) ([]json.RawMessage, string, error) {
	req, err := p.client.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	resp, err := p.client.BareDo(ctx, req)
	var accepted *github.AcceptedError
	switch {
	case errors.As(err, &accepted):
		// 202 is a success; BareDo has already drained the body into Raw.
		p.logger.Printf("  %s answered 202 Accepted", pageURL)
		batch, err := decodePage(accepted.Raw, pageURL)
		if err != nil {
			return nil, "", err
		}
		return batch, nextLink(resp.Header.Get("Link")), nil
	case err != nil:
		if resp != nil && resp.Response != nil {
			return nil, "", &HTTPError{Status: resp.StatusCode, URL: pageURL, Err: err}
		}
		return nil, "", fmt.Errorf("request to %s failed: %w", pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read page from %s: %w", pageURL, err)
	}
	batch, err := decodePage(body, pageURL)
	if err != nil {
		return nil, "", err
	}
	return batch, nextLink(resp.Header.Get("Link")), nil
}

// decodePage reads a page body as a JSON array. An empty body is an empty page.
func decodePage(body []byte, pageURL string) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode page from %s: %w", pageURL, err)
	}
	return batch, nil
}

// withParams merges params into the query of rawURL, replacing existing keys.
func withParams(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for key, values := range params {
		q.Del(key)
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
