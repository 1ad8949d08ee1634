package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/repository"
)

// ProjectRepository implements repository.ProjectRepository for Postgres
type ProjectRepository struct {
	client *Client
	log    *zap.Logger
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new Postgres project repository
func NewProjectRepository(client *Client, log *zap.Logger) *ProjectRepository {
	return &ProjectRepository{client: client, log: log}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, name, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.client.DB().ExecContext(ctx, query,
		project.ID, project.Name, project.UserID, project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	r.log.Info("Project created",
		zap.String("project_id", project.ID),
		zap.String("user_id", project.UserID))
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM projects
		WHERE id = $1
	`
	return r.findOne(ctx, query, id)
}

func (r *ProjectRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Project, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`
	return r.findOne(ctx, query, id, userID)
}

func (r *ProjectRepository) FindByUserAndName(ctx context.Context, userID, name string) (*domain.Project, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM projects
		WHERE user_id = $1 AND name = $2
	`
	return r.findOne(ctx, query, userID, name)
}

func (r *ProjectRepository) FindByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.client.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.client.DB().ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrProjectNotFound
	}

	r.log.Info("Project deleted", zap.String("project_id", id))
	return nil
}

func (r *ProjectRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Project, error) {
	var p domain.Project
	err := r.client.DB().QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return &p, nil
}
