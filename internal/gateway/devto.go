package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/naka-gawa/site-stats/internal/domain"
)

// DefaultDevtoURL is the blogging platform API root.
const DefaultDevtoURL = "https://dev.to"

// devtoHistoryStart predates every article on the platform.
const devtoHistoryStart = "2019-04-01"

// DevtoClient reads article analytics from the blogging platform.
type DevtoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

// devtoDay is one day of an article's historical analytics.
type devtoDay struct {
	PageViews struct {
		Total int `json:"total"`
	} `json:"page_views"`
	Comments struct {
		Total int `json:"total"`
	} `json:"comments"`
	Reactions struct {
		Like int `json:"like"`
	} `json:"reactions"`
}

// NewDevtoClient creates a DevtoClient. A nil httpClient uses http.DefaultClient.
func NewDevtoClient(httpClient *http.Client, baseURL, apiKey string, logger *log.Logger) *DevtoClient {
	if baseURL == "" {
		baseURL = DefaultDevtoURL
	}
	return &DevtoClient{
		httpClient: defaultHTTPClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// ArticleID scrapes the numeric article id from the public article page.
func (c *DevtoClient) ArticleID(ctx context.Context, articleURL string) (int, error) {
	resp, err := doRequest(ctx, c.httpClient, articleURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch article page: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse article page %s: %w", articleURL, err)
	}
	raw, ok := doc.Find("[data-article-id]").First().Attr("data-article-id")
	if !ok {
		return 0, fmt.Errorf("no article id found on %s", articleURL)
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid article id %q on %s: %w", raw, articleURL, err)
	}
	return id, nil
}

// Stats returns the lifetime views, comments and likes of the article at articleURL.
func (c *DevtoClient) Stats(ctx context.Context, articleURL string) (domain.DevtoStats, error) {
	id, err := c.ArticleID(ctx, articleURL)
	if err != nil {
		return domain.DevtoStats{}, err
	}
	params := url.Values{
		"start":      {devtoHistoryStart},
		"article_id": {strconv.Itoa(id)},
	}
	endpoint := c.baseURL + "/api/analytics/historical?" + params.Encode()

	c.logger.Printf("Fetching blog analytics of article %d...", id)
	var days map[string]devtoDay
	if err := getJSON(ctx, c.httpClient, endpoint, http.Header{"Api-Key": {c.apiKey}}, &days); err != nil {
		return domain.DevtoStats{}, fmt.Errorf("failed to fetch analytics of article %d: %w", id, err)
	}

	var stats domain.DevtoStats
	for _, day := range days {
		stats.Views += day.PageViews.Total
		stats.Comments += day.Comments.Total
		stats.Reactions += day.Reactions.Like
	}
	return stats, nil
}
