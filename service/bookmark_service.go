package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FlorianRuen/devhub/model"
	"github.com/FlorianRuen/devhub/storage"
	log "github.com/sirupsen/logrus"
)

type BookmarkService interface {
	List() []model.Bookmark
	Add(repository model.Repository) (model.Bookmark, error)
	Remove(repositoryID int64) error
	Update(repositoryID int64, note string, tags []string) (model.Bookmark, error)
	IsBookmarked(repositoryID int64) bool
	Get(repositoryID int64) (model.Bookmark, bool)
	Toggle(repository model.Repository) (bool, error)
	Refresh(ctx context.Context) ([]model.Bookmark, error)
}

// bookmarkService keeps the bookmark list in memory and writes the full list back to storage on every mutation
// the in memory list is only replaced once the write succeeded
type bookmarkService struct {
	mu            sync.RWMutex
	storage       storage.Storage
	githubService GithubService
	bookmarks     []model.Bookmark
	now           func() time.Time
}

func NewBookmarkService(store storage.Storage, githubService GithubService) BookmarkService {
	bookmarks := storage.LoadList[model.Bookmark](store, storage.BookmarksKey)

	log.WithField("bookmarks", len(bookmarks)).Debug("bookmarks loaded from storage")

	return &bookmarkService{
		storage:       store,
		githubService: githubService,
		bookmarks:     bookmarks,
		now:           time.Now,
	}
}

func (s *bookmarkService) List() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneBookmarks(s.bookmarks)
}

// Add bookmarks the repository with an empty note and no tags
// adding an already bookmarked repository returns the existing bookmark untouched
func (s *bookmarkService) Add(repository model.Repository) (model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(repository.ID); i >= 0 {
		log.WithField("repositoryID", repository.ID).Debug("repository already bookmarked")
		return cloneBookmark(s.bookmarks[i]), nil
	}

	bookmark := model.Bookmark{
		Repository: repository,
		Note:       "",
		Tags:       []string{},
		DateAdded:  s.now().UTC(),
	}

	updated := append(cloneBookmarks(s.bookmarks), bookmark)
	if err := s.persist(updated); err != nil {
		return model.Bookmark{}, err
	}

	log.WithFields(log.Fields{
		"repositoryID": repository.ID,
		"fullName":     repository.FullName,
	}).Info("repository bookmarked")

	return cloneBookmark(bookmark), nil
}

// Remove deletes the bookmark of the repository, removing an unknown repository is a no-op
func (s *bookmarkService) Remove(repositoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(repositoryID) < 0 {
		return nil
	}

	updated := make([]model.Bookmark, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		if b.Repository.ID != repositoryID {
			updated = append(updated, cloneBookmark(b))
		}
	}

	if err := s.persist(updated); err != nil {
		return err
	}

	log.WithField("repositoryID", repositoryID).Info("bookmark removed")
	return nil
}

// Update replaces the note and tags of a single bookmark
func (s *bookmarkService) Update(repositoryID int64, note string, tags []string) (model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(repositoryID)
	if i < 0 {
		return model.Bookmark{}, fmt.Errorf("%w: %d", model.ErrBookmarkNotFound, repositoryID)
	}

	if tags == nil {
		tags = []string{}
	}

	updated := cloneBookmarks(s.bookmarks)
	updated[i].Note = note
	updated[i].Tags = append([]string{}, tags...)

	if err := s.persist(updated); err != nil {
		return model.Bookmark{}, err
	}

	return cloneBookmark(updated[i]), nil
}

func (s *bookmarkService) IsBookmarked(repositoryID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indexOf(repositoryID) >= 0
}

func (s *bookmarkService) Get(repositoryID int64) (model.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(repositoryID); i >= 0 {
		return cloneBookmark(s.bookmarks[i]), true
	}

	return model.Bookmark{}, false
}

// Toggle removes the bookmark when present, adds it otherwise
// it returns whether the repository is bookmarked afterwards
func (s *bookmarkService) Toggle(repository model.Repository) (bool, error) {
	if s.IsBookmarked(repository.ID) {
		return false, s.Remove(repository.ID)
	}

	_, err := s.Add(repository)
	return err == nil, err
}

// Refresh replaces the repository snapshot of every bookmark with its current state on github
// note, tags and date added are kept, repositories that could not be fetched keep their previous snapshot
func (s *bookmarkService) Refresh(ctx context.Context) ([]model.Bookmark, error) {
	current := s.List()

	repos := make([]model.Repository, 0, len(current))
	for _, b := range current {
		repos = append(repos, b.Repository)
	}

	refreshed, err := s.githubService.RefreshRepositories(ctx, repos)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// bookmarks may have changed while github was queried
	updated := cloneBookmarks(s.bookmarks)
	for i := range updated {
		if repo, found := refreshed[updated[i].Repository.ID]; found {
			updated[i].Repository = repo
		}
	}

	if err := s.persist(updated); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"bookmarks": len(updated),
		"refreshed": len(refreshed),
	}).Info("bookmarks refreshed from github")

	return cloneBookmarks(updated), nil
}

// persist must be called with the write lock held
func (s *bookmarkService) persist(bookmarks []model.Bookmark) error {
	if err := storage.SaveList(s.storage, storage.BookmarksKey, bookmarks); err != nil {
		log.WithError(err).Error("unable to save bookmarks")
		return err
	}

	s.bookmarks = bookmarks
	return nil
}

func (s *bookmarkService) indexOf(repositoryID int64) int {
	for i, b := range s.bookmarks {
		if b.Repository.ID == repositoryID {
			return i
		}
	}

	return -1
}

func cloneBookmark(b model.Bookmark) model.Bookmark {
	if b.Tags != nil {
		b.Tags = append([]string{}, b.Tags...)
	}

	return b
}

func cloneBookmarks(bookmarks []model.Bookmark) []model.Bookmark {
	out := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, cloneBookmark(b))
	}

	return out
}
