package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/FlorianRuen/devhub/config"
	"github.com/FlorianRuen/devhub/model"
	"github.com/FlorianRuen/devhub/service"
	"github.com/gin-gonic/gin"
)

type APIController interface {
	Health(c *gin.Context)
	GetRepositories(c *gin.Context)
	GetTrendingRepositories(c *gin.Context)
	Discover(c *gin.Context)
	GetAnalytics(c *gin.Context)
}

type apiController struct {
	githubService    service.GithubService
	discoveryService service.DiscoveryService
	config           config.Config
}

func NewAPIController(config config.Config, githubService service.GithubService, discoveryService service.DiscoveryService) APIController {
	return apiController{
		githubService:    githubService,
		discoveryService: discoveryService,
		config:           config,
	}
}

func (s apiController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s apiController) GetRepositories(c *gin.Context) {
	searchQuery, ok := bindSearchQuery(c)
	if !ok {
		return
	}

	repos, err := s.githubService.SearchRepositories(c, searchQuery)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (s apiController) GetTrendingRepositories(c *gin.Context) {
	repos, err := s.githubService.TrendingRepositories(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (s apiController) Discover(c *gin.Context) {
	searchQuery, ok := bindSearchQuery(c)
	if !ok {
		return
	}

	discovery, err := s.discoveryService.Discover(c, searchQuery)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, discovery)
}

// GetAnalytics computes the statistics of the repositories the hub would display for these filters
func (s apiController) GetAnalytics(c *gin.Context) {
	searchQuery, ok := bindSearchQuery(c)
	if !ok {
		return
	}

	analytics, err := s.discoveryService.Analytics(c, searchQuery)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func bindSearchQuery(c *gin.Context) (model.SearchQuery, bool) {
	var searchQuery model.SearchQuery
	if err := c.ShouldBindQuery(&searchQuery); err != nil {
		abortWithError(c, invalidRequest(err))
		return searchQuery, false
	}

	return searchQuery, true
}

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
}

// abortWithError writes the api error with the status matching its code
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), model.NewAPIError(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrInvalidShareLink):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrBookmarkNotFound),
		errors.Is(err, model.ErrProjectNotFound),
		errors.Is(err, model.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrRateLimitReached):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
