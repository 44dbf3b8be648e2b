package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// GHStatsClient reads repository stars from a self-hosted GitHub stats dashboard.
type GHStatsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

type ghstatsRepos struct {
	Items []struct {
		Name  string `json:"name"`
		Stars int    `json:"stars"`
	} `json:"items"`
}

// NewGHStatsClient creates a GHStatsClient. A nil httpClient uses http.DefaultClient.
func NewGHStatsClient(httpClient *http.Client, baseURL, apiKey string, logger *log.Logger) *GHStatsClient {
	return &GHStatsClient{
		httpClient: defaultHTTPClient(httpClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Stars returns the star count of every tracked repository keyed by name.
func (c *GHStatsClient) Stars(ctx context.Context) (map[string]int, error) {
	c.logger.Println("Fetching repository stars from the stats dashboard...")
	var repos ghstatsRepos
	err := getJSON(ctx, c.httpClient, c.baseURL+"/api/repos", http.Header{"X-Api-Token": {c.apiKey}}, &repos)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository stars: %w", err)
	}
	stars := make(map[string]int, len(repos.Items))
	for _, item := range repos.Items {
		stars[item.Name] = item.Stars
	}
	return stars, nil
}
