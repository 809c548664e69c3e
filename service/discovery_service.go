package service

import (
	"context"
	"math"
	"sort"

	"github.com/FlorianRuen/devhub/model"
	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	topLanguagesCount    = 6
	topRepositoriesCount = 10
	maxLabelLength       = 15
)

type DiscoveryService interface {
	Discover(ctx context.Context, searchQuery model.SearchQuery) (model.Discovery, error)
	Analytics(ctx context.Context, searchQuery model.SearchQuery) (model.Analytics, error)
}

type discoveryService struct {
	githubService GithubService
}

func NewDiscoveryService(githubService GithubService) DiscoveryService {
	return discoveryService{githubService: githubService}
}

// Discover loads search results and trending repositories at the same time
// only the displayed list (search when the query is active, trending otherwise) can fail the call
func (s discoveryService) Discover(ctx context.Context, searchQuery model.SearchQuery) (model.Discovery, error) {
	discovery := model.Discovery{
		Active:   searchQuery.IsActive(),
		Search:   []model.Repository{},
		Trending: []model.Repository{},
	}

	eg, egCtx := errgroup.WithContext(ctx)

	if discovery.Active {
		eg.Go(func() error {
			repos, err := s.githubService.SearchRepositories(egCtx, searchQuery)
			if err != nil {
				return err
			}

			discovery.Search = repos
			return nil
		})
	}

	eg.Go(func() error {
		repos, err := s.githubService.TrendingRepositories(egCtx)
		if err != nil {
			if discovery.Active {
				log.WithError(err).Warn("unable to load trending repositories")
				return nil
			}

			return err
		}

		discovery.Trending = repos
		return nil
	})

	if err := eg.Wait(); err != nil {
		return model.Discovery{}, err
	}

	discovery.Displayed = discovery.Trending
	if discovery.Active {
		discovery.Displayed = discovery.Search
	}

	return discovery, nil
}

func (s discoveryService) Analytics(ctx context.Context, searchQuery model.SearchQuery) (model.Analytics, error) {
	discovery, err := s.Discover(ctx, searchQuery)
	if err != nil {
		return model.Analytics{}, err
	}

	return ComputeAnalytics(discovery.Displayed), nil
}

// ComputeAnalytics aggregates the statistics shown in the analytics tab
// the input slice is never reordered
func ComputeAnalytics(repos []model.Repository) model.Analytics {
	analytics := model.Analytics{
		Languages:  []model.LanguageCount{},
		TopStarred: []model.RepositoryStars{},
	}

	stars := make(stats.Float64Data, 0, len(repos))
	languages := make(map[string]int)

	for _, r := range repos {
		analytics.Totals.Repositories++
		analytics.Totals.Stars += r.StargazersCount
		analytics.Totals.Forks += r.ForksCount
		analytics.Totals.OpenIssues += r.OpenIssuesCount
		stars = append(stars, float64(r.StargazersCount))

		if r.Language != "" {
			languages[r.Language]++
		}
	}

	// both return an error on empty input only
	if mean, err := stats.Mean(stars); err == nil {
		analytics.Totals.AverageStars = int(math.Round(mean))
	}
	if median, err := stats.Median(stars); err == nil {
		analytics.Totals.MedianStars = median
	}

	for language, count := range languages {
		analytics.Languages = append(analytics.Languages, model.LanguageCount{Language: language, Count: count})
	}
	sort.Slice(analytics.Languages, func(i, j int) bool {
		if analytics.Languages[i].Count != analytics.Languages[j].Count {
			return analytics.Languages[i].Count > analytics.Languages[j].Count
		}
		return analytics.Languages[i].Language < analytics.Languages[j].Language
	})
	if len(analytics.Languages) > topLanguagesCount {
		analytics.Languages = analytics.Languages[:topLanguagesCount]
	}

	sorted := append([]model.Repository{}, repos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StargazersCount > sorted[j].StargazersCount
	})
	if len(sorted) > topRepositoriesCount {
		sorted = sorted[:topRepositoriesCount]
	}

	for _, r := range sorted {
		analytics.TopStarred = append(analytics.TopStarred, model.RepositoryStars{
			Label: chartLabel(r.Name),
			Stars: r.StargazersCount,
			Forks: r.ForksCount,
		})
	}

	return analytics
}

func chartLabel(name string) string {
	runes := []rune(name)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength]) + "..."
	}

	return name
}
