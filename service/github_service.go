package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/FlorianRuen/devhub/config"
	"github.com/FlorianRuen/devhub/model"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v66/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type GithubService interface {
	SearchRepositories(ctx context.Context, searchQuery model.SearchQuery) ([]model.Repository, error)
	TrendingRepositories(ctx context.Context) ([]model.Repository, error)
	RefreshRepositories(ctx context.Context, repos []model.Repository) (map[int64]model.Repository, error)
	FetchSingleRepository(ctx context.Context, r model.Repository, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.Repository) error

	HandleRequestErrors(err error) error
}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	searchCache       *expirable.LRU[string, []model.Repository]
	trendingCache     *expirable.LRU[string, []model.Repository]
	config            config.Config
	now               func() time.Time
	onRetry           backoff.Notify
}

// search results are cached like the web client did: 5 minutes for searches, 30 minutes for trending
// the local rate limiter is consumed for each request really sent to github, retries included
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	cacheSize := config.Github.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1
	}

	return &githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		searchCache:       expirable.NewLRU[string, []model.Repository](cacheSize, nil, config.Github.SearchCacheTTL),
		trendingCache:     expirable.NewLRU[string, []model.Repository](cacheSize, nil, config.Github.TrendingCacheTTL),
		config:            config,
		now:               time.Now,
		onRetry:           logRetry,
	}
}

func (s *githubService) SearchRepositories(ctx context.Context, searchQuery model.SearchQuery) ([]model.Repository, error) {
	query := searchQuery.ToGithubQuery(s.now())

	log.WithFields(log.Fields{
		"query":     searchQuery.Query,
		"language":  searchQuery.Language,
		"minStars":  searchQuery.MinStars,
		"sortBy":    searchQuery.SortBy,
		"dateRange": searchQuery.DateRange,
	}).Info("search repositories on github with filters")

	return s.search(ctx, s.searchCache, query, searchQuery.SortParam(), s.config.Github.SearchPerPage)
}

// TrendingRepositories returns the most starred repositories created during the last week
func (s *githubService) TrendingRepositories(ctx context.Context) ([]model.Repository, error) {
	return s.search(ctx, s.trendingCache, model.TrendingQuery(s.now()), "stars", s.config.Github.TrendingPerPage)
}

func (s *githubService) search(ctx context.Context, cache *expirable.LRU[string, []model.Repository], query, sort string, perPage int) ([]model.Repository, error) {
	cacheKey := query + "|" + sort + "|" + strconv.Itoa(perPage)

	if repos, found := cache.Get(cacheKey); found {
		log.WithField("query", query).Debug("repositories served from cache")
		return repos, nil
	}

	var result *github.RepositoriesSearchResult

	err := s.withRetry(ctx, func() error {
		if !s.githubRateLimiter.Allow() {
			log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
			return backoff.Permanent(model.ErrRateLimitReached)
		}

		res, _, err := s.githubClient.Search.Repositories(ctx, query, &github.SearchOptions{
			Sort:  sort,
			Order: "desc",
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: perPage,
			},
		})

		if err != nil {
			return s.retryable(ctx, s.HandleRequestErrors(err))
		}

		result = res
		return nil
	})

	if err != nil {
		return []model.Repository{}, err
	}

	repos := make([]model.Repository, 0, len(result.Repositories))

	for _, r := range result.Repositories {
		repo, ok := toRepository(r)
		if !ok {
			log.WithField("repositoryID", r.GetID()).Debug("repository found with invalid information. skipped")
			continue
		}

		repos = append(repos, repo)
	}

	cache.Add(cacheKey, repos)

	return repos, nil
}

// RefreshRepositories fetches the current state of each repository in parameters
// this function use wait groups to parallelize the requests for each repository
// repositories that could not be fetched are missing from the returned map
func (s *githubService) RefreshRepositories(ctx context.Context, repos []model.Repository) (map[int64]model.Repository, error) {
	refreshed := make(map[int64]model.Repository, len(repos))

	if len(repos) == 0 {
		return refreshed, nil
	}

	// if there is not enought requests, return an error to avoid refreshing only a part of repositories
	if !s.githubRateLimiter.AllowN(s.now(), len(repos)) {
		log.WithField("repositoriesToLoad", len(repos)).Warning("not enought requests in rate limiter to refresh all repositories")
		return refreshed, model.ErrRateLimitReached
	}

	swg := sizedwaitgroup.New(max(1, s.config.Tasks.MaxParallelTasksAllowed))
	results := make(chan model.Repository, len(repos))

	for _, r := range repos {
		swg.Add()
		go func(r model.Repository) {
			if err := s.FetchSingleRepository(ctx, r, &swg, results); err != nil {
				log.WithError(err).WithField("repository", r.FullName).Warn("unable to refresh repository")
			}
		}(r)
	}

	log.Debug("waiting for all threads for refreshing repositories to be finished")
	swg.Wait()
	close(results)

	for repo := range results {
		refreshed[repo.ID] = repo
	}

	return refreshed, nil
}

// FetchSingleRepository get the current state of a specific repository and sends it to the channel
// note: we are not checking the rate limit in this function, because done in the parent function
func (s *githubService) FetchSingleRepository(ctx context.Context, r model.Repository, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.Repository) error {
	defer swg.Done()

	log.WithFields(log.Fields{
		"repositoryID": r.ID,
		"fullName":     r.FullName,
	}).Debug("fetch repository")

	res, _, err := s.githubClient.Repositories.Get(ctx, r.Owner.Login, r.Name)
	if err != nil {
		return s.HandleRequestErrors(err)
	}

	repo, ok := toRepository(res)
	if !ok {
		return model.ErrInvalidData
	}

	ch <- repo
	return nil
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// If error is a rate limit error, this function will update the local rate limiter to consume all available requests
// this can help us to keep the local rate limiter up to date
func (s *githubService) HandleRequestErrors(err error) error {
	var rateLimitErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError

	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseErr) {
		if tokens := int(s.githubRateLimiter.Tokens()); tokens > 0 && !s.githubRateLimiter.AllowN(s.now(), tokens) {
			return model.ErrRateLimiter
		}

		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return model.ErrRateLimitReached
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return fmt.Errorf("%w: %v", model.ErrFetch, err)
}

// retryable marks the errors that another attempt can't fix as permanent
func (s *githubService) retryable(ctx context.Context, err error) error {
	if errors.Is(err, model.ErrRateLimitReached) || errors.Is(err, model.ErrRateLimiter) || ctx.Err() != nil {
		return backoff.Permanent(err)
	}

	return err
}

// withRetry runs operation up to MaxRetries more times, waiting min(initial * 2^n, max) between attempts
func (s *githubService) withRetry(ctx context.Context, operation func() error) error {
	return backoff.RetryNotify(operation, backoff.WithContext(s.retryPolicy(), ctx), s.onRetry)
}

// retryPolicy is an exponential backoff without jitter nor elapsed time limit
func (s *githubService) retryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.Github.RetryInitialDelay
	policy.MaxInterval = s.config.Github.RetryMaxDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	policy.Reset()

	retries := uint64(max(0, s.config.Github.MaxRetries))

	return backoff.WithMaxRetries(policy, retries)
}

func logRetry(err error, wait time.Duration) {
	log.WithError(err).WithField("wait", wait.String()).Debug("github request failed, will retry")
}

// toRepository converts the go-github payload, rejecting repositories without identity
func toRepository(r *github.Repository) (model.Repository, bool) {
	if r == nil || r.ID == nil || r.Name == nil || r.FullName == nil || r.Owner == nil || r.Owner.Login == nil {
		return model.Repository{}, false
	}

	return model.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Description:     r.GetDescription(),
		HTMLURL:         r.GetHTMLURL(),
		StargazersCount: r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		Language:        r.GetLanguage(),
		UpdatedAt:       r.GetUpdatedAt().Time,
		Size:            r.GetSize(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		Owner: model.Owner{
			Login:     r.Owner.GetLogin(),
			AvatarURL: r.Owner.GetAvatarURL(),
		},
	}, true
}
