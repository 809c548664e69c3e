package model

import (
	"strings"
	"time"
)

// CodeState holds the three playground source buffers
type CodeState struct {
	HTML string `json:"html" yaml:"html"`
	CSS  string `json:"css" yaml:"css"`
	JS   string `json:"js" yaml:"js"`
}

type LineCounts struct {
	HTML int `json:"html"`
	CSS  int `json:"css"`
	JS   int `json:"js"`
}

// LineCounts returns the number of lines of each buffer, as shown in the playground status bar
func (c CodeState) LineCounts() LineCounts {
	return LineCounts{
		HTML: countLines(c.HTML),
		CSS:  countLines(c.CSS),
		JS:   countLines(c.JS),
	}
}

// countLines counts like the editor status bar: an empty buffer is one empty line
func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}

// Project is a playground project saved to storage
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      CodeState `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

type Template struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Code        CodeState `json:"code" yaml:"code"`
}
