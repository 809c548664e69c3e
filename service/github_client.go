package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FlorianRuen/devhub/config"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// NewGithubClient builds the go-github client used by the services
// secondary rate limits are absorbed by the ratelimit waiter, the token (if any) is injected by oauth2
func NewGithubClient(cfg config.GithubConfig) (*github.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter

	if cfg.Token != "" {
		log.Debug("will setup github client with authorization token")
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		}
	}

	githubClient := github.NewClient(&http.Client{Transport: transport})

	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}

		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}

		githubClient.BaseURL = parsed
	}

	return githubClient, nil
}

// NewRateLimiter creates the local rate limiter, refilled every hour
// when reachable, the tokens already consumed on github are taken from the bucket
// this help us to have a right rate limiter even if external requests are made
func NewRateLimiter(ctx context.Context, cfg config.GithubConfig, githubClient *github.Client) *rate.Limiter {
	limit := cfg.RequestsPerHour
	if limit <= 0 {
		limit = config.GetDefault().Github.RequestsPerHour
	}

	rateLimiter := rate.NewLimiter(rate.Every(time.Hour/time.Duration(limit)), limit)

	log.Debug("loading current rate limit from github")
	rateLimits, _, err := githubClient.RateLimit.Get(ctx)
	if err != nil || rateLimits.GetSearch() == nil {
		log.WithError(err).Warn("unable to load current github rate limits. local rate limiter starts full")
		return rateLimiter
	}

	search := rateLimits.GetSearch()
	log.WithFields(log.Fields{
		"totalAvailable":    search.Limit,
		"remainingRequests": search.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	if used := search.Limit - search.Remaining; used > 0 {
		rateLimiter.AllowN(time.Now(), min(used, limit))
	}

	return rateLimiter
}
