// Package config reads credentials and endpoints from the process environment.
package config

import (
	"fmt"
	"sort"
	"strings"
)

// Environment variable names.
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvDevtoAPIKey  = "DEVTO_API_KEY"
	EnvMediumCookie = "MEDIUM_COOKIE"
	EnvUmamiToken   = "UMAMI_TOKEN"
	EnvUmamiSite    = "UMAMI_SITE"
	EnvGHStatsURL   = "GHS_API_URL"
	EnvGHStatsKey   = "GHS_API_KEY"
)

// DefaultUmamiSite is the analytics website id of the personal site.
const DefaultUmamiSite = "2314c16c-b72f-4f6e-8f5e-ee3abe39383e"

// Config holds every credential the commands may need.
// Which of them are mandatory depends on the command; see Require.
type Config struct {
	GitHubToken  string
	DevtoAPIKey  string
	MediumCookie string
	UmamiToken   string
	UmamiSite    string
	GHStatsURL   string
	GHStatsKey   string
}

// FromEnv builds a Config using getenv, usually os.Getenv.
func FromEnv(getenv func(string) string) *Config {
	c := &Config{
		GitHubToken:  getenv(EnvGitHubToken),
		DevtoAPIKey:  getenv(EnvDevtoAPIKey),
		MediumCookie: getenv(EnvMediumCookie),
		UmamiToken:   getenv(EnvUmamiToken),
		UmamiSite:    getenv(EnvUmamiSite),
		GHStatsURL:   strings.TrimRight(getenv(EnvGHStatsURL), "/"),
		GHStatsKey:   getenv(EnvGHStatsKey),
	}
	if c.UmamiSite == "" {
		c.UmamiSite = DefaultUmamiSite
	}
	return c
}

// MissingEnvError lists required environment variables that are unset.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("required environment variable(s) not set: %s", strings.Join(e.Names, ", "))
}

// Require returns a *MissingEnvError naming every variable in names that is empty.
func (c *Config) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if c.lookup(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingEnvError{Names: missing}
}

func (c *Config) lookup(name string) string {
	switch name {
	case EnvGitHubToken:
		return c.GitHubToken
	case EnvDevtoAPIKey:
		return c.DevtoAPIKey
	case EnvMediumCookie:
		return c.MediumCookie
	case EnvUmamiToken:
		return c.UmamiToken
	case EnvUmamiSite:
		return c.UmamiSite
	case EnvGHStatsURL:
		return c.GHStatsURL
	case EnvGHStatsKey:
		return c.GHStatsKey
	}
	return ""
}
