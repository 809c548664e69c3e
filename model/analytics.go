package model

type Analytics struct {
	Totals     AnalyticsTotals   `json:"totals"`
	Languages  []LanguageCount   `json:"languages"`
	TopStarred []RepositoryStars `json:"topStarred"`
}

type AnalyticsTotals struct {
	Repositories int     `json:"repositories"`
	Stars        int     `json:"stars"`
	Forks        int     `json:"forks"`
	OpenIssues   int     `json:"openIssues"`
	AverageStars int     `json:"averageStars"`
	MedianStars  float64 `json:"medianStars"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type RepositoryStars struct {
	Label string `json:"label"`
	Stars int    `json:"stars"`
	Forks int    `json:"forks"`
}

// Discovery is what the hub landing page displays
type Discovery struct {
	Active    bool         `json:"active"`
	Search    []Repository `json:"search"`
	Trending  []Repository `json:"trending"`
	Displayed []Repository `json:"displayed"`
}
