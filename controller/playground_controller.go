package controller

import (
	"fmt"
	"net/http"

	"github.com/FlorianRuen/devhub/model"
	"github.com/FlorianRuen/devhub/playground"
	"github.com/FlorianRuen/devhub/service"
	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

type PlaygroundController interface {
	ListTemplates(c *gin.Context)
	GetTemplate(c *gin.Context)
	Preview(c *gin.Context)
	Export(c *gin.Context)
	Share(c *gin.Context)
	LoadShared(c *gin.Context)
	Stats(c *gin.Context)
	ListProjects(c *gin.Context)
	SaveProject(c *gin.Context)
	GetProject(c *gin.Context)
	DeleteProject(c *gin.Context)
}

type playgroundController struct {
	playgroundService service.PlaygroundService
}

func NewPlaygroundController(playgroundService service.PlaygroundService) PlaygroundController {
	return playgroundController{playgroundService: playgroundService}
}

type saveProjectRequest struct {
	Name string          `json:"name"`
	Code model.CodeState `json:"code"`
}

type shareResponse struct {
	Fragment string `json:"fragment"`
	URL      string `json:"url"`
}

func (s playgroundController) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, s.playgroundService.Templates())
}

func (s playgroundController) GetTemplate(c *gin.Context) {
	template, err := s.playgroundService.Template(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// Preview renders the document for the preview frame
// the sandbox is applied through the CSP header so the document is also sandboxed when opened directly
func (s playgroundController) Preview(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}

	document := s.playgroundService.Preview(code)
	if c.Query("standalone") == "true" {
		document = s.playgroundService.Standalone(code)
	}

	c.Header("Content-Security-Policy", "sandbox "+playground.SandboxPolicy)
	c.Data(http.StatusOK, htmlContentType, []byte(document))
}

func (s playgroundController) Export(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}

	fileName, document := s.playgroundService.Export(c.Query("name"), code)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, htmlContentType, []byte(document))
}

func (s playgroundController) Share(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}

	fragment, shareURL := s.playgroundService.Share(code)
	c.JSON(http.StatusOK, shareResponse{Fragment: fragment, URL: shareURL})
}

// LoadShared always answers 200, an invalid fragment gives the empty code state
func (s playgroundController) LoadShared(c *gin.Context) {
	c.JSON(http.StatusOK, s.playgroundService.LoadShared(c.Query("fragment")))
}

func (s playgroundController) Stats(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.playgroundService.Stats(code))
}

func (s playgroundController) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.playgroundService.ListProjects())
}

func (s playgroundController) SaveProject(c *gin.Context) {
	var request saveProjectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	project, err := s.playgroundService.SaveProject(request.Name, request.Code)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (s playgroundController) GetProject(c *gin.Context) {
	project, err := s.playgroundService.Project(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (s playgroundController) DeleteProject(c *gin.Context) {
	if err := s.playgroundService.DeleteProject(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func bindCode(c *gin.Context) (model.CodeState, bool) {
	var code model.CodeState
	if err := c.ShouldBindJSON(&code); err != nil {
		abortWithError(c, invalidRequest(err))
		return code, false
	}

	return code, true
}
