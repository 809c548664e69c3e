// Package storage persists the client state (saved projects and bookmarks) as JSON documents under fixed keys.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FlorianRuen/devhub/config"
	"github.com/FlorianRuen/devhub/model"
	log "github.com/sirupsen/logrus"
)

const (
	ProjectsKey  = "codeProjects"
	BookmarksKey = "github-bookmarks"
)

// Storage is a key/value store holding raw JSON documents
type Storage interface {
	GetItem(key string) ([]byte, bool, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
	Close() error
}

// Open returns the storage driver selected in configuration
func Open(cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "bolt":
		return NewBolt(cfg.Path)
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// LoadList reads a JSON array stored under key
// a missing key or a malformed document yields an empty list: the error is logged, never returned
func LoadList[T any](s Storage, key string) []T {
	items := make([]T, 0)

	raw, found, err := s.GetItem(key)
	if err != nil {
		log.WithError(err).WithField("key", key).Error("unable to read item from storage")
		return items
	}

	if !found || len(raw) == 0 {
		return items
	}

	if err := json.Unmarshal(raw, &items); err != nil {
		log.WithError(err).WithField("key", key).Error("malformed item found in storage. reset to empty list")
		return make([]T, 0)
	}

	return items
}

// SaveList writes the full list under key
func SaveList[T any](s Storage, key string, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", model.ErrStorage, key, err)
	}

	if err := s.SetItem(key, raw); err != nil {
		return fmt.Errorf("%w: writing %s: %v", model.ErrStorage, key, err)
	}

	return nil
}
