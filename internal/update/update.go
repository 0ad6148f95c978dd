// Package update checks GitHub releases for a newer slaclock.
package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/slaclock/internal/cache"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/log"
	"golang.org/x/mod/semver"
	"golang.org/x/oauth2"
)

// ErrNoRelease is returned when the repository has no published release.
var ErrNoRelease = errors.New("no published release")

// Release is the latest published release.
type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Result compares the running version with the latest release.
type Result struct {
	Current   string
	Latest    string
	URL       string
	Available bool
}

// Checker queries the releases of one repository.
type Checker struct {
	client   *gh.Client
	owner    string
	repo     string
	cache    *cache.Cache
	cacheTTL time.Duration
}

// Option configures a Checker.
type Option func(*Checker) error

// WithRepository overrides the repository that is checked.
func WithRepository(owner, repo string) Option {
	return func(c *Checker) error {
		c.owner, c.repo = owner, repo
		return nil
	}
}

// WithCache remembers the latest release in c for ttl.
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(ch *Checker) error {
		ch.cache, ch.cacheTTL = c, ttl
		return nil
	}
}

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(rawURL string) Option {
	return func(c *Checker) error {
		if !strings.HasSuffix(rawURL, "/") {
			rawURL += "/"
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid API URL %q: %w", rawURL, err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// NewChecker returns a checker for the slaclock repository. GITHUB_TOKEN is
// used when set; release metadata is public, so it is optional.
func NewChecker(ctx context.Context, opts ...Option) (*Checker, error) {
	httpClient := &http.Client{}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Transport = &rateLimitTransport{base: httpClient.Transport}

	c := &Checker{
		client: gh.NewClient(httpClient),
		owner:  constants.ReleaseOwner,
		repo:   constants.ReleaseRepo,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Latest fetches the latest published release, from the cache when one is
// configured and still fresh.
func (c *Checker) Latest(ctx context.Context) (Release, error) {
	key := c.owner + "/" + c.repo

	var cached Release
	if c.cache != nil && c.cache.Get(key, c.cacheTTL, &cached) {
		log.Debug("using cached release", "repo", key, "version", cached.Version)
		return cached, nil
	}

	rel, resp, err := c.client.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return Release{}, ErrNoRelease
		}
		return Release{}, fmt.Errorf("failed to get latest release of %s: %w", key, err)
	}

	latest := Release{
		Version: strings.TrimPrefix(rel.GetTagName(), "v"),
		URL:     rel.GetHTMLURL(),
	}
	if c.cache != nil {
		if err := c.cache.Set(key, latest); err != nil {
			log.Debug("failed to cache release", "error", err)
		}
	}
	return latest, nil
}

// Check compares current with the latest release.
func (c *Checker) Check(ctx context.Context, current string) (Result, error) {
	rel, err := c.Latest(ctx)
	if err != nil {
		return Result{}, err
	}

	current = strings.TrimPrefix(current, "v")
	res := Result{
		Current:   current,
		Latest:    rel.Version,
		URL:       rel.URL,
		Available: Newer(rel.Version, current),
	}
	log.Debug("update check", "current", res.Current, "latest", res.Latest, "available", res.Available)
	return res, nil
}

// Newer reports whether latest should replace current. Versions that are
// not semantic versions (such as "dev") compare by inequality.
func Newer(latest, current string) bool {
	l, c := "v"+strings.TrimPrefix(latest, "v"), "v"+strings.TrimPrefix(current, "v")
	if semver.IsValid(l) && semver.IsValid(c) {
		return semver.Compare(l, c) > 0
	}
	return latest != current
}
