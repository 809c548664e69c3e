package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FlorianRuen/devhub/config"
	"github.com/FlorianRuen/devhub/model"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/remeh/sizedwaitgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// testConfig returns the default config with retries fast enough for tests
func testConfig() config.Config {
	conf := config.GetDefault()
	conf.Github.RetryInitialDelay = time.Millisecond
	conf.Github.RetryMaxDelay = 5 * time.Millisecond

	return *conf
}

func newTestGithubService(t *testing.T, rateLimit int, options ...githubMock.MockBackendOption) *githubService {
	t.Helper()

	mockedHTTPClient := githubMock.NewMockedHTTPClient(options...)
	mockedRateLimiter := rate.NewLimiter(rate.Every(time.Hour), rateLimit)
	mockedGithubClient := github.NewClient(mockedHTTPClient)

	return NewGithubService(testConfig(), mockedGithubClient, mockedRateLimiter).(*githubService)
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload interface{}) {
	_, err := w.Write(githubMock.MustMarshal(payload))
	if err != nil {
		t.Error("unable to configure mock http client")
	}
}

// TestSearchRepositories will test function SearchRepositories
func TestSearchRepositories(t *testing.T) {
	updatedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name                     string
		searchQuery              model.SearchQuery
		mockResponseRepositories github.RepositoriesSearchResult
		rateLimit                int
		expectedQuery            string
		expectedSort             string
		expectedRepos            []model.Repository
		expectError              bool
		expectedErr              error
	}{
		{
			name:          "Single repository without search",
			rateLimit:     60,
			searchQuery:   model.SearchQuery{},
			expectedQuery: "stars:>1000",
			expectedSort:  "stars",
			mockResponseRepositories: github.RepositoriesSearchResult{
				Repositories: []*github.Repository{
					{
						ID:              github.Int64(1),
						FullName:        github.String("test-owner/repo1"),
						Owner:           &github.User{Login: github.String("test-owner"), AvatarURL: github.String("https://avatars/1")},
						Name:            github.String("repo1"),
						Description:     github.String("first repository"),
						HTMLURL:         github.String("https://github.com/test-owner/repo1"),
						Language:        github.String("Go"),
						StargazersCount: github.Int(1500),
						ForksCount:      github.Int(20),
						OpenIssuesCount: github.Int(3),
						Size:            github.Int(512),
						UpdatedAt:       &github.Timestamp{Time: updatedAt},
					},
				},
			},
			expectedRepos: []model.Repository{
				{
					ID:              1,
					Name:            "repo1",
					FullName:        "test-owner/repo1",
					Description:     "first repository",
					HTMLURL:         "https://github.com/test-owner/repo1",
					StargazersCount: 1500,
					ForksCount:      20,
					Language:        "Go",
					UpdatedAt:       updatedAt,
					Size:            512,
					OpenIssuesCount: 3,
					Owner:           model.Owner{Login: "test-owner", AvatarURL: "https://avatars/1"},
				},
			},
		},
		{
			name:      "Search by text and language sorted by forks",
			rateLimit: 60,
			searchQuery: model.SearchQuery{
				Query:   "foo",
				Filters: model.Filters{Language: "Go", SortBy: "forks"},
			},
			expectedQuery: "foo language:Go",
			expectedSort:  "forks",
			mockResponseRepositories: github.RepositoriesSearchResult{
				Repositories: []*github.Repository{
					{
						ID:       github.Int64(2),
						FullName: github.String("Owner2/foo"),
						Owner:    &github.User{Login: github.String("Owner2")},
						Name:     github.String("foo"),
					},
				},
			},
			expectedRepos: []model.Repository{
				{ID: 2, Name: "foo", FullName: "Owner2/foo", Owner: model.Owner{Login: "Owner2"}},
			},
		},
		{
			name:          "Invalid repositories are skipped",
			rateLimit:     60,
			searchQuery:   model.SearchQuery{},
			expectedQuery: "stars:>1000",
			expectedSort:  "stars",
			mockResponseRepositories: github.RepositoriesSearchResult{
				Repositories: []*github.Repository{
					{
						ID:       github.Int64(2),
						FullName: github.String("Owner2/repo2"),
						Name:     github.String("repo2"),
					},
					{
						ID:       github.Int64(3),
						FullName: github.String("Owner3/repo3"),
						Owner:    &github.User{Login: github.String("Owner3")},
						Name:     github.String("repo3"),
					},
				},
			},
			expectedRepos: []model.Repository{
				{ID: 3, Name: "repo3", FullName: "Owner3/repo3", Owner: model.Owner{Login: "Owner3"}},
			},
		},
		{
			name:          "Local rate limiter exhausted",
			rateLimit:     0,
			searchQuery:   model.SearchQuery{},
			expectedQuery: "stars:>1000",
			expectedSort:  "stars",
			expectedRepos: []model.Repository{},
			expectError:   true,
			expectedErr:   model.ErrRateLimitReached,
		},
	}

	// execute tests
	for _, tt := range tests {

		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGithubService(t, tt.rateLimit,
				githubMock.WithRequestMatchHandler(
					githubMock.GetSearchRepositories,
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						assert.Equal(t, tt.expectedQuery, r.URL.Query().Get("q"))
						assert.Equal(t, tt.expectedSort, r.URL.Query().Get("sort"))
						assert.Equal(t, "desc", r.URL.Query().Get("order"))
						assert.Equal(t, "50", r.URL.Query().Get("per_page"))
						writeJSON(t, w, tt.mockResponseRepositories)
					}),
				),
			)

			repos, err := svc.SearchRepositories(context.Background(), tt.searchQuery)

			if tt.expectError {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.expectedRepos, repos)
		})
	}
}

func TestSearchRepositories_Cached(t *testing.T) {
	var calls atomic.Int32

	svc := newTestGithubService(t, 60,
		githubMock.WithRequestMatchHandler(
			githubMock.GetSearchRepositories,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				writeJSON(t, w, github.RepositoriesSearchResult{})
			}),
		),
	)

	query := model.SearchQuery{Query: "cache"}

	_, err := svc.SearchRepositories(context.Background(), query)
	require.NoError(t, err)
	_, err = svc.SearchRepositories(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// a different sort is a different search
	query.SortBy = "updated"
	_, err = svc.SearchRepositories(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchRepositories_Retry(t *testing.T) {
	tests := []struct {
		name          string
		failures      int32
		maxRetries    int
		expectedCalls int32
		expectedWaits []time.Duration
		expectError   bool
	}{
		{
			name:          "succeeds after two failures",
			failures:      2,
			maxRetries:    3,
			expectedCalls: 3,
			expectedWaits: []time.Duration{time.Millisecond, 2 * time.Millisecond},
		},
		{
			name:          "gives up after max retries",
			failures:      10,
			maxRetries:    3,
			expectedCalls: 4,
			expectedWaits: []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond},
			expectError:   true,
		},
		{
			name:          "wait is capped to the max delay",
			failures:      10,
			maxRetries:    5,
			expectedCalls: 6,
			expectedWaits: []time.Duration{
				time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			svc := newTestGithubService(t, 60,
				githubMock.WithRequestMatchHandler(
					githubMock.GetSearchRepositories,
					http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						if calls.Add(1) <= tt.failures {
							githubMock.WriteError(w, http.StatusInternalServerError, "github is down")
							return
						}
						writeJSON(t, w, github.RepositoriesSearchResult{})
					}),
				),
			)
			svc.config.Github.MaxRetries = tt.maxRetries

			var waits []time.Duration
			svc.onRetry = func(_ error, wait time.Duration) {
				waits = append(waits, wait)
			}

			repos, err := svc.SearchRepositories(context.Background(), model.SearchQuery{})

			if tt.expectError {
				assert.ErrorIs(t, err, model.ErrFetch)
				assert.Equal(t, "FETCH_ERROR", model.NewAPIError(err).Code)
			} else {
				assert.NoError(t, err)
			}

			assert.Empty(t, repos)
			assert.Equal(t, tt.expectedCalls, calls.Load())
			assert.Equal(t, tt.expectedWaits, waits)
		})
	}
}

// TestRetryPolicy checks the schedule with the default delays: min(1s * 2^n, 30s), no jitter
func TestRetryPolicy(t *testing.T) {
	svc := newTestGithubService(t, 60)
	svc.config.Github.RetryInitialDelay = time.Second
	svc.config.Github.RetryMaxDelay = 30 * time.Second

	tests := []struct {
		name       string
		maxRetries int
		expected   []time.Duration
	}{
		{
			name:       "Default retries",
			maxRetries: 3,
			expected:   []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, backoff.Stop},
		},
		{
			name:       "Capped to max delay",
			maxRetries: 7,
			expected: []time.Duration{
				time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
				30 * time.Second, 30 * time.Second, backoff.Stop,
			},
		},
		{
			name:       "No retry",
			maxRetries: 0,
			expected:   []time.Duration{backoff.Stop},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.config.Github.MaxRetries = tt.maxRetries
			policy := svc.retryPolicy()

			waits := make([]time.Duration, 0, len(tt.expected))
			for range tt.expected {
				waits = append(waits, policy.NextBackOff())
			}

			assert.Equal(t, tt.expected, waits)
		})
	}
}

func TestSearchRepositories_GithubRateLimitIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	svc := newTestGithubService(t, 60,
		githubMock.WithRequestMatchHandler(
			githubMock.GetSearchRepositories,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set("X-RateLimit-Limit", "10")
				w.Header().Set("X-RateLimit-Remaining", "0")
				githubMock.WriteError(w, http.StatusForbidden, "API rate limit exceeded")
			}),
		),
	)

	_, err := svc.SearchRepositories(context.Background(), model.SearchQuery{})

	assert.ErrorIs(t, err, model.ErrRateLimitReached)
	assert.Equal(t, int32(1), calls.Load())

	// the local limiter has been drained
	assert.False(t, svc.githubRateLimiter.Allow())
}

func TestTrendingRepositories(t *testing.T) {
	svc := newTestGithubService(t, 60,
		githubMock.WithRequestMatchHandler(
			githubMock.GetSearchRepositories,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "created:>2024-05-08", r.URL.Query().Get("q"))
				assert.Equal(t, "stars", r.URL.Query().Get("sort"))
				assert.Equal(t, "30", r.URL.Query().Get("per_page"))
				writeJSON(t, w, github.RepositoriesSearchResult{
					Repositories: []*github.Repository{
						{
							ID:       github.Int64(7),
							FullName: github.String("new/shiny"),
							Owner:    &github.User{Login: github.String("new")},
							Name:     github.String("shiny"),
						},
					},
				})
			}),
		),
	)
	svc.now = func() time.Time { return time.Date(2024, 5, 15, 23, 0, 0, 0, time.UTC) }

	repos, err := svc.TrendingRepositories(context.Background())

	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "new/shiny", repos[0].FullName)
}

// TestFetchSingleRepository test the function called FetchSingleRepository
func TestFetchSingleRepository(t *testing.T) {
	tests := []struct {
		name         string
		repo         model.Repository
		mockResponse github.Repository
		expectError  bool
		expectedErr  error
	}{
		{
			name: "Fetch repository successfully",
			repo: model.Repository{ID: 1, Name: "Repo1", Owner: model.Owner{Login: "Owner1"}},
			mockResponse: github.Repository{
				ID:              github.Int64(1),
				FullName:        github.String("Owner1/Repo1"),
				Owner:           &github.User{Login: github.String("Owner1")},
				Name:            github.String("Repo1"),
				StargazersCount: github.Int(42),
			},
		},
		{
			name:         "Invalid repository payload",
			repo:         model.Repository{ID: 1, Name: "Repo1", Owner: model.Owner{Login: "Owner1"}},
			mockResponse: github.Repository{Name: github.String("Repo1")},
			expectError:  true,
			expectedErr:  model.ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGithubService(t, 60,
				githubMock.WithRequestMatchHandler(
					githubMock.GetReposByOwnerByRepo,
					http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						writeJSON(t, w, tt.mockResponse)
					}),
				),
			)

			// Prepare wait group and channel
			swg := sizedwaitgroup.New(1)
			ch := make(chan model.Repository, 1)

			// execute the function
			swg.Add()
			err := svc.FetchSingleRepository(context.Background(), tt.repo, &swg, ch)

			if tt.expectError {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Len(t, ch, 0)
			} else {
				assert.NoError(t, err)

				// check that the expected result was sent to the channel
				repo := <-ch
				assert.Equal(t, tt.repo.ID, repo.ID)
				assert.Equal(t, 42, repo.StargazersCount)
			}
		})
	}
}

// TestRefreshRepositories test function called RefreshRepositories
func TestRefreshRepositories(t *testing.T) {
	repos := []model.Repository{
		{ID: 1, Name: "repo1", FullName: "owner1/repo1", Owner: model.Owner{Login: "owner1"}},
		{ID: 2, Name: "repo2", FullName: "owner2/repo2", Owner: model.Owner{Login: "owner2"}},
	}

	tests := []struct {
		name          string
		rateLimit     int
		expectedStars map[int64]int
		expectedErr   error
	}{
		{
			name:          "Refresh all repositories",
			rateLimit:     60,
			expectedStars: map[int64]int{1: 100, 2: 200},
		},
		{
			name:          "Not enough requests in rate limiter",
			rateLimit:     1,
			expectedStars: map[int64]int{},
			expectedErr:   model.ErrRateLimitReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGithubService(t, tt.rateLimit,
				githubMock.WithRequestMatchHandler(
					githubMock.GetReposByOwnerByRepo,
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						for _, repo := range repos {
							if r.URL.Path == "/repos/"+repo.FullName {
								writeJSON(t, w, github.Repository{
									ID:              github.Int64(repo.ID),
									FullName:        github.String(repo.FullName),
									Owner:           &github.User{Login: github.String(repo.Owner.Login)},
									Name:            github.String(repo.Name),
									StargazersCount: github.Int(int(repo.ID) * 100),
								})
								return
							}
						}
						githubMock.WriteError(w, http.StatusNotFound, "not found")
					}),
				),
			)

			refreshed, err := svc.RefreshRepositories(context.Background(), repos)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			stars := make(map[int64]int, len(refreshed))
			for id, repo := range refreshed {
				stars[id] = repo.StargazersCount
			}
			assert.Equal(t, tt.expectedStars, stars)
		})
	}
}

func TestHandleRequestErrors(t *testing.T) {
	svc := newTestGithubService(t, 5)

	err := svc.HandleRequestErrors(&github.RateLimitError{Message: "limit"})
	assert.ErrorIs(t, err, model.ErrRateLimitReached)
	assert.False(t, svc.githubRateLimiter.Allow())

	err = svc.HandleRequestErrors(assert.AnError)
	assert.ErrorIs(t, err, model.ErrFetch)
}
