package model

import (
	"fmt"
	"math"
	"time"
)

// Repository is the subset of the GitHub search API repository payload used by the hub
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Language        string    `json:"language"`
	UpdatedAt       time.Time `json:"updated_at"`
	Size            int       `json:"size"`
	OpenIssuesCount int       `json:"open_issues_count"`
	Owner           Owner     `json:"owner"`
}

type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// UpdatedAgo renders the age of the last update the way repository cards display it
func (r Repository) UpdatedAgo(now time.Time) string {
	diff := math.Abs(now.Sub(r.UpdatedAt).Hours() / 24)
	days := int(math.Ceil(diff))

	switch {
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
