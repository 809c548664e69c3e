package model

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultSearchQuery = "stars:>1000"
	githubDateLayout   = "2006-01-02"
)

// Filters are the sidebar filters of the discovery hub
// they are transient and never persisted
type Filters struct {
	Language  string `form:"language" json:"language"`
	MinStars  int    `form:"minStars" json:"minStars" binding:"min=0"`
	SortBy    string `form:"sortBy" json:"sortBy"`
	DateRange string `form:"dateRange" json:"dateRange" binding:"omitempty,oneof=day week month year"`
}

type SearchQuery struct {
	Query string `form:"query" json:"query"`
	Filters
}

// IsActive tells if the user typed a query or set any filter
// when inactive, the hub displays trending repositories instead of search results
func (params SearchQuery) IsActive() bool {
	return strings.TrimSpace(params.Query) != "" ||
		params.Language != "" ||
		params.MinStars > 0 ||
		params.SortBy != "" ||
		params.DateRange != ""
}

// ToGithubQuery concatenates the qualifier clauses onto the free text query
func (params SearchQuery) ToGithubQuery(now time.Time) string {
	var githubQuery strings.Builder

	if query := strings.TrimSpace(params.Query); query != "" {
		githubQuery.WriteString(query)
	} else {
		githubQuery.WriteString(DefaultSearchQuery)
	}

	if params.Language != "" {
		githubQuery.WriteString(" language:" + params.Language)
	}

	if params.MinStars > 0 {
		githubQuery.WriteString(" stars:>=" + strconv.Itoa(params.MinStars))
	}

	if since, ok := DateRangeStart(params.DateRange, now); ok {
		githubQuery.WriteString(" pushed:>=" + since.Format(githubDateLayout))
	}

	return githubQuery.String()
}

// SortParam maps the sort filter to the search API sort field, stars being the default
func (params SearchQuery) SortParam() string {
	switch params.SortBy {
	case "forks", "updated", "created":
		return params.SortBy
	default:
		return "stars"
	}
}

// DateRangeStart returns the UTC start of the given range, relative to now
func DateRangeStart(dateRange string, now time.Time) (time.Time, bool) {
	now = now.UTC()

	switch dateRange {
	case "day":
		return now.AddDate(0, 0, -1), true
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, -1, 0), true
	case "year":
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// TrendingQuery returns the query used for repositories created during the last week
func TrendingQuery(now time.Time) string {
	since, _ := DateRangeStart("week", now)
	return "created:>" + since.Format(githubDateLayout)
}
