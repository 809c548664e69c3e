package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/FlorianRuen/devhub/config"
	"github.com/FlorianRuen/devhub/model"
	"github.com/FlorianRuen/devhub/playground"
	"github.com/FlorianRuen/devhub/storage"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const DefaultProjectName = "My Code Project"

type PlaygroundService interface {
	Templates() []model.Template
	Template(id string) (model.Template, error)

	Preview(code model.CodeState) string
	Standalone(code model.CodeState) string
	Export(name string, code model.CodeState) (fileName string, document string)
	Share(code model.CodeState) (fragment string, shareURL string)
	LoadShared(fragment string) model.CodeState
	Stats(code model.CodeState) model.LineCounts

	SaveProject(name string, code model.CodeState) (model.Project, error)
	ListProjects() []model.Project
	Project(id string) (model.Project, error)
	DeleteProject(id string) error
}

type playgroundService struct {
	mu        sync.Mutex
	catalogue *playground.Catalogue
	storage   storage.Storage
	config    config.Config
	now       func() time.Time
	newID     func() string
}

func NewPlaygroundService(config config.Config, store storage.Storage, catalogue *playground.Catalogue) PlaygroundService {
	return &playgroundService{
		catalogue: catalogue,
		storage:   store,
		config:    config,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *playgroundService) Templates() []model.Template {
	return s.catalogue.All()
}

func (s *playgroundService) Template(id string) (model.Template, error) {
	return s.catalogue.Get(id)
}

func (s *playgroundService) Preview(code model.CodeState) string {
	return playground.ComposePreview(code)
}

func (s *playgroundService) Standalone(code model.CodeState) string {
	return playground.ComposeStandalone(code)
}

// Export returns the download file name and the standalone document titled with the project name
func (s *playgroundService) Export(name string, code model.CodeState) (string, string) {
	name = projectName(name)
	return playground.ExportFileName(name), playground.ComposeExport(name, code)
}

func (s *playgroundService) Share(code model.CodeState) (string, string) {
	return playground.EncodeFragment(code), playground.ShareURL(s.config.API.BaseURL, code)
}

// LoadShared decodes a share fragment, an invalid fragment yields the empty code state
func (s *playgroundService) LoadShared(fragment string) model.CodeState {
	code, err := playground.DecodeFragment(fragment)
	if err != nil {
		log.WithError(err).Warn("failed to load shared code")
		return model.CodeState{}
	}

	return code
}

func (s *playgroundService) Stats(code model.CodeState) model.LineCounts {
	return code.LineCounts()
}

// SaveProject appends the project to the saved projects list
func (s *playgroundService) SaveProject(name string, code model.CodeState) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := model.Project{
		ID:        s.newID(),
		Name:      projectName(name),
		Code:      code,
		Timestamp: s.now().UTC(),
	}

	projects := append(storage.LoadList[model.Project](s.storage, storage.ProjectsKey), project)
	if err := storage.SaveList(s.storage, storage.ProjectsKey, projects); err != nil {
		log.WithError(err).Error("unable to save project")
		return model.Project{}, err
	}

	log.WithFields(log.Fields{
		"projectID": project.ID,
		"name":      project.Name,
	}).Info("project saved")

	return project, nil
}

func (s *playgroundService) ListProjects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	return storage.LoadList[model.Project](s.storage, storage.ProjectsKey)
}

func (s *playgroundService) Project(id string) (model.Project, error) {
	for _, p := range s.ListProjects() {
		if p.ID == id {
			return p, nil
		}
	}

	return model.Project{}, fmt.Errorf("%w: %s", model.ErrProjectNotFound, id)
}

func (s *playgroundService) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := storage.LoadList[model.Project](s.storage, storage.ProjectsKey)
	kept := make([]model.Project, 0, len(projects))

	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if len(kept) == len(projects) {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, id)
	}

	return storage.SaveList(s.storage, storage.ProjectsKey, kept)
}

func projectName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultProjectName
	}

	return name
}
