package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/shurcooL/graphql"
)

// DefaultMediumURL is the publishing platform's internal GraphQL endpoint.
const DefaultMediumURL = "https://medium.com/_/graphql"

// MediumClient reads post statistics through the publishing platform's
// internal GraphQL API, authenticated with a browser session cookie.
type MediumClient struct {
	client *graphql.Client
	logger *log.Logger
}

// ID is a GraphQL ID variable. The query builder declares variables by Go
// type name, and graphql.ID is an interface that would be declared as string.
type ID string

// postStatsQuery reads the lifetime views of a single post.
type postStatsQuery struct {
	Post struct {
		ID         graphql.ID
		TotalStats struct {
			Views graphql.Int
		}
	} `graphql:"post(id: $postId)"`
}

// NewMediumClient creates a MediumClient. A nil httpClient uses http.DefaultClient's transport.
func NewMediumClient(httpClient *http.Client, endpoint, cookie string, logger *log.Logger) *MediumClient {
	if endpoint == "" {
		endpoint = DefaultMediumURL
	}
	httpClient = defaultHTTPClient(httpClient)
	transport := &statusTransport{
		base: &headerTransport{
			base:   httpClient.Transport,
			header: http.Header{"Cookie": {cookie}},
		},
	}
	return &MediumClient{
		client: graphql.NewClient(endpoint, &http.Client{Transport: transport, Timeout: httpClient.Timeout}),
		logger: logger,
	}
}

// Views returns the lifetime views of the post at postURL. The post id is the
// last path segment of the URL.
func (c *MediumClient) Views(ctx context.Context, postURL string) (int, error) {
	postID, err := mediumPostID(postURL)
	if err != nil {
		return 0, err
	}
	c.logger.Printf("Fetching publishing stats of post %s...", postID)

	var q postStatsQuery
	variables := map[string]interface{}{
		"postId": ID(postID),
	}
	if err := c.client.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for post %s: %w", postID, err)
	}
	return int(q.Post.TotalStats.Views), nil
}

func mediumPostID(postURL string) (string, error) {
	u, err := url.Parse(postURL)
	if err != nil {
		return "", fmt.Errorf("invalid post url %q: %w", postURL, err)
	}
	id := path.Base(strings.TrimRight(u.Path, "/"))
	if id == "." || id == "/" || id == "" {
		return "", fmt.Errorf("no post id in url %q", postURL)
	}
	return id, nil
}
