package model

import (
	"strings"
	"time"
)

// Bookmark is a locally persisted annotation attached to a repository
// bookmarks are keyed by Repository.ID
type Bookmark struct {
	Repository Repository `json:"repository"`
	Note       string     `json:"note"`
	Tags       []string   `json:"tags"`
	DateAdded  time.Time  `json:"dateAdded"`
}

// ParseTags splits a comma separated tag list, trimming spaces and dropping empty entries
func ParseTags(raw string) []string {
	tags := make([]string, 0)

	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}
