// Package gateway provides gateways to GitHub and to the publishing and
// analytics platforms the site reports on, abstracting away their REST and
// GraphQL clients.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/google/go-querystring/query"
	"github.com/naka-gawa/site-stats/internal/domain"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// DefaultGitHubAPIURL is the public GitHub REST API root.
const DefaultGitHubAPIURL = "https://api.github.com"

const perPage = 100

// Fetcher defines the per-repository counts a report needs from GitHub.
type Fetcher interface {
	CountCommits(ctx context.Context, repo string, window domain.DateWindow) (int, error)
	CountClosedIssues(ctx context.Context, repo string, window domain.DateWindow) (int, error)
	CountReleases(ctx context.Context, repo string, window domain.DateWindow) (int, error)
}

// Options configures a GitHubGateway.
type Options struct {
	// Token is optional; requests are unauthenticated without it.
	Token  string
	APIURL string
	// PageDelay is the pause between successive page requests.
	PageDelay time.Duration
	// StrictWindow also drops releases created on or after the window end.
	StrictWindow bool
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	pager         *Pager
	graphqlClient *githubv4.Client
	apiURL        string
	strictWindow  bool
	logger        *log.Logger
}

// windowOptions are the query parameters shared by the windowed list endpoints.
type windowOptions struct {
	State   string `url:"state,omitempty"`
	Since   string `url:"since,omitempty"`
	Until   string `url:"until,omitempty"`
	PerPage int    `url:"per_page,omitempty"`
}

// releaseItem is the part of a release the window filter needs.
type releaseItem struct {
	TagName   string    `json:"tag_name"`
	CreatedAt time.Time `json:"created_at"`
}

// repositoriesQuery lists an owner's public source repositories, most starred first.
type repositoriesQuery struct {
	RepositoryOwner struct {
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name           string
				NameWithOwner  string
				Description    string
				StargazerCount int
				Languages      struct {
					Nodes []struct {
						Name string
					}
				} `graphql:"languages(first: 10, orderBy: {field: SIZE, direction: DESC})"`
			}
		} `graphql:"repositories(first: 100, after: $cursor, privacy: PUBLIC, isFork: false, ownerAffiliations: OWNER, orderBy: {field: STARGAZERS, direction: DESC})"`
	} `graphql:"repositoryOwner(login: $login)"`
}

// NewGitHubHTTPClient returns an HTTP client that waits out GitHub's secondary
// rate limits and authenticates with token when it is not empty.
func NewGitHubHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	if token == "" {
		return &http.Client{Transport: rateLimitWaiter}, nil
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *log.Logger) (*GitHubGateway, error) {
	httpClient, err := NewGitHubHTTPClient(opts.Token)
	if err != nil {
		return nil, err
	}
	apiURL := strings.TrimRight(opts.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultGitHubAPIURL
	}
	return newGitHubGateway(httpClient, apiURL, opts, logger), nil
}

func newGitHubGateway(httpClient *http.Client, apiURL string, opts Options, logger *log.Logger) *GitHubGateway {
	graphqlHTTPClient := &http.Client{Transport: &statusTransport{base: httpClient.Transport}}
	return &GitHubGateway{
		pager:         NewPager(github.NewClient(httpClient), opts.PageDelay, logger),
		graphqlClient: githubv4.NewEnterpriseClient(apiURL+"/graphql", graphqlHTTPClient),
		apiURL:        apiURL,
		strictWindow:  opts.StrictWindow,
		logger:        logger,
	}
}

// CountCommits counts the commits of repo authored inside the window.
func (g *GitHubGateway) CountCommits(ctx context.Context, repo string, window domain.DateWindow) (int, error) {
	items, err := g.fetchRepoList(ctx, repo, "commits", windowOptions{
		Since:   window.Since.Format(time.RFC3339),
		Until:   window.Until.Format(time.RFC3339),
		PerPage: perPage,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch commits of %s: %w", repo, err)
	}
	return len(items), nil
}

// CountClosedIssues counts the closed issues of repo updated since the window start.
func (g *GitHubGateway) CountClosedIssues(ctx context.Context, repo string, window domain.DateWindow) (int, error) {
	items, err := g.fetchRepoList(ctx, repo, "issues", windowOptions{
		State:   "closed",
		Since:   window.Since.Format(time.RFC3339),
		PerPage: perPage,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch closed issues of %s: %w", repo, err)
	}
	return len(items), nil
}

// CountReleases counts the releases of repo created since the window start.
// The releases endpoint has no server-side date filter, so every release is
// fetched and filtered here.
//
// By default only the lower bound applies: releases created after the window
// end still count, so releases on 2023-12-31, 2024-01-01, 2024-12-31 and
// 2025-01-01 give 3 for the 2024 window. With StrictWindow the end is
// exclusive too and the same releases give 2.
func (g *GitHubGateway) CountReleases(ctx context.Context, repo string, window domain.DateWindow) (int, error) {
	items, err := g.fetchRepoList(ctx, repo, "releases", windowOptions{PerPage: perPage})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch releases of %s: %w", repo, err)
	}
	count, err := countReleasesInWindow(items, window, g.strictWindow)
	if err != nil {
		return 0, fmt.Errorf("failed to read releases of %s: %w", repo, err)
	}
	return count, nil
}

func (g *GitHubGateway) fetchRepoList(ctx context.Context, repo, resource string, opts windowOptions) ([]json.RawMessage, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid repository reference %q, want owner/name", repo)
	}
	params, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/%s", g.apiURL, url.PathEscape(owner), url.PathEscape(name), resource)
	g.logger.Printf("Fetching %s of %s...", resource, repo)
	return g.pager.FetchAll(ctx, endpoint, params)
}

func countReleasesInWindow(items []json.RawMessage, window domain.DateWindow, strict bool) (int, error) {
	count := 0
	for _, raw := range items {
		var release releaseItem
		if err := json.Unmarshal(raw, &release); err != nil {
			return 0, err
		}
		inWindow := window.StartsBy(release.CreatedAt)
		if strict {
			inWindow = window.Contains(release.CreatedAt)
		}
		if inWindow {
			count++
		}
	}
	return count, nil
}

// ListRepositories returns the public, non-fork repositories of owner as
// project records, ordered by stars descending.
func (g *GitHubGateway) ListRepositories(ctx context.Context, owner string) ([]domain.Project, error) {
	g.logger.Printf("Fetching repositories of %s using GraphQL API...", owner)
	variables := map[string]interface{}{
		"login":  githubv4.String(owner),
		"cursor": (*githubv4.String)(nil),
	}
	var projects []domain.Project
	for {
		var q repositoriesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for repositories: %w", err)
		}
		for _, node := range q.RepositoryOwner.Repositories.Nodes {
			languages := make([]string, 0, len(node.Languages.Nodes))
			for _, lang := range node.Languages.Nodes {
				languages = append(languages, lang.Name)
			}
			projects = append(projects, domain.Project{
				Name:        node.NameWithOwner,
				Description: node.Description,
				Languages:   languages,
				Stars:       node.StargazerCount,
			})
		}
		if !q.RepositoryOwner.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.RepositoryOwner.Repositories.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Completed fetching %d repositories.", len(projects))
	return projects, nil
}

// Stars returns the stargazer count of every repository of owner, keyed both
// by owner/name and by the bare repository name.
func (g *GitHubGateway) Stars(ctx context.Context, owner string) (map[string]int, error) {
	repos, err := g.ListRepositories(ctx, owner)
	if err != nil {
		return nil, err
	}
	stars := make(map[string]int, 2*len(repos))
	for _, repo := range repos {
		stars[repo.Name] = repo.Stars
		if _, name, ok := strings.Cut(repo.Name, "/"); ok {
			stars[name] = repo.Stars
		}
	}
	return stars, nil
}
