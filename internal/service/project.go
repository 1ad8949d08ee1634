package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/cache"
	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/repository"
)

// ProjectService implements project CRUD with ownership enforcement.
type ProjectService struct {
	projects repository.ProjectRepository
	cache    cache.ProjectCache
	log      *zap.Logger
}

var _ ProjectServicer = (*ProjectService)(nil)

// NewProjectService creates a new project service
func NewProjectService(projects repository.ProjectRepository, projectCache cache.ProjectCache, log *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		cache:    projectCache,
		log:      log,
	}
}

// Create adds a project for userID. Names are unique per user.
func (s *ProjectService) Create(ctx context.Context, userID, name string) (*domain.Project, error) {
	existing, err := s.projects.FindByUserAndName(ctx, userID, name)
	if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, fmt.Errorf("failed to check project name: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateProjectName
	}

	project := &domain.Project{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// List returns the user's projects, newest first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.FindByUser(ctx, userID)
}

// Delete removes one of the user's projects; stored events cascade away
// with it.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	if _, err := s.VerifyOwner(ctx, projectID, userID); err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, projectID); err != nil {
		s.log.Warn("Project cache invalidation failed",
			zap.String("project_id", projectID), zap.Error(err))
	}
	return nil
}

// VerifyOwner returns the project only if it belongs to userID.
func (s *ProjectService) VerifyOwner(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	return s.projects.FindByIDAndUser(ctx, projectID, userID)
}
