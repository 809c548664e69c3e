package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/FlorianRuen/devhub/model"
	"github.com/FlorianRuen/devhub/service"
	"github.com/gin-gonic/gin"
)

type BookmarkController interface {
	ListBookmarks(c *gin.Context)
	GetBookmark(c *gin.Context)
	AddBookmark(c *gin.Context)
	ToggleBookmark(c *gin.Context)
	UpdateBookmark(c *gin.Context)
	RemoveBookmark(c *gin.Context)
	RefreshBookmarks(c *gin.Context)
}

type bookmarkController struct {
	bookmarkService service.BookmarkService
}

func NewBookmarkController(bookmarkService service.BookmarkService) BookmarkController {
	return bookmarkController{bookmarkService: bookmarkService}
}

// tagList accepts either a JSON array or the comma separated string typed in the edit form
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*t = model.ParseTags(raw)
		return nil
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("tags must be a list or a comma separated string")
	}

	*t = tags
	return nil
}

type updateBookmarkRequest struct {
	Note string  `json:"note"`
	Tags tagList `json:"tags"`
}

func (s bookmarkController) ListBookmarks(c *gin.Context) {
	c.JSON(http.StatusOK, s.bookmarkService.List())
}

// GetBookmark answers whether a repository is bookmarked: 200 with the bookmark or 404
func (s bookmarkController) GetBookmark(c *gin.Context) {
	id, ok := repositoryID(c)
	if !ok {
		return
	}

	bookmark, found := s.bookmarkService.Get(id)
	if !found {
		abortWithError(c, fmt.Errorf("%w: %d", model.ErrBookmarkNotFound, id))
		return
	}

	c.JSON(http.StatusOK, bookmark)
}

func (s bookmarkController) AddBookmark(c *gin.Context) {
	repository, ok := bindRepository(c)
	if !ok {
		return
	}

	bookmark, err := s.bookmarkService.Add(repository)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookmark)
}

func (s bookmarkController) ToggleBookmark(c *gin.Context) {
	repository, ok := bindRepository(c)
	if !ok {
		return
	}

	bookmarked, err := s.bookmarkService.Toggle(repository)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

func (s bookmarkController) UpdateBookmark(c *gin.Context) {
	id, ok := repositoryID(c)
	if !ok {
		return
	}

	var request updateBookmarkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	bookmark, err := s.bookmarkService.Update(id, request.Note, request.Tags)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookmark)
}

func (s bookmarkController) RemoveBookmark(c *gin.Context) {
	id, ok := repositoryID(c)
	if !ok {
		return
	}

	if err := s.bookmarkService.Remove(id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s bookmarkController) RefreshBookmarks(c *gin.Context) {
	bookmarks, err := s.bookmarkService.Refresh(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookmarks)
}

func repositoryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, invalidRequest(fmt.Errorf("invalid repository id %q", c.Param("id"))))
		return 0, false
	}

	return id, true
}

func bindRepository(c *gin.Context) (model.Repository, bool) {
	var repository model.Repository
	if err := c.ShouldBindJSON(&repository); err != nil {
		abortWithError(c, invalidRequest(err))
		return repository, false
	}

	if repository.ID == 0 {
		abortWithError(c, invalidRequest(fmt.Errorf("repository id is required")))
		return repository, false
	}

	return repository, true
}
