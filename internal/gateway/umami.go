package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultUmamiURL is the hosted web analytics API root.
const DefaultUmamiURL = "https://api.umami.is"

// UmamiClient reads page view metrics of one analytics website.
type UmamiClient struct {
	httpClient *http.Client
	baseURL    string
	siteID     string
	apiKey     string
	logger     *log.Logger
}

type umamiMetric struct {
	X string `json:"x"`
	Y int    `json:"y"`
}

// NewUmamiClient creates an UmamiClient. A nil httpClient uses http.DefaultClient.
func NewUmamiClient(httpClient *http.Client, baseURL, siteID, apiKey string, logger *log.Logger) *UmamiClient {
	if baseURL == "" {
		baseURL = DefaultUmamiURL
	}
	return &UmamiClient{
		httpClient: defaultHTTPClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
		siteID:     siteID,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// PageViews returns views per site path between start and end. Paths are
// normalised by dropping the #fragment and any trailing slash; the site root
// and tag listing pages are skipped.
func (c *UmamiClient) PageViews(ctx context.Context, start, end time.Time) (map[string]int, error) {
	params := url.Values{
		"startAt": {strconv.FormatInt(start.UnixMilli(), 10)},
		"endAt":   {strconv.FormatInt(end.UnixMilli(), 10)},
		"type":    {"url"},
	}
	endpoint := fmt.Sprintf("%s/v1/websites/%s/metrics?%s", c.baseURL, url.PathEscape(c.siteID), params.Encode())

	c.logger.Println("Fetching site page views...")
	var metrics []umamiMetric
	if err := getJSON(ctx, c.httpClient, endpoint, http.Header{"X-Umami-Api-Key": {c.apiKey}}, &metrics); err != nil {
		return nil, fmt.Errorf("failed to fetch page views: %w", err)
	}

	views := make(map[string]int)
	for _, m := range metrics {
		path, _, _ := strings.Cut(m.X, "#")
		path = strings.TrimRight(path, "/")
		if path == "" || strings.HasPrefix(path, "/tags/") {
			continue
		}
		views[path] += m.Y
	}
	return views, nil
}
