package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/dto"
	"github.com/NitinGurawaliya/watch-dog/internal/geo"
	"github.com/NitinGurawaliya/watch-dog/internal/middleware"
	"github.com/NitinGurawaliya/watch-dog/internal/realtime"
	"github.com/NitinGurawaliya/watch-dog/internal/service"
	"github.com/NitinGurawaliya/watch-dog/web"
)

const (
	dailyStatsDays = 7
	groupStatsDays = 30
)

// Options bundles the knobs the handler needs from configuration.
type Options struct {
	JWTSecret     []byte
	PublicBaseURL string

	// Tick is the interval between periodic stats pushes on an open stream.
	Tick time.Duration
}

type Handler struct {
	trackService   service.TrackServicer
	projectService service.ProjectServicer
	stats          service.StatsProvider
	registry       *realtime.Registry
	broadcaster    *realtime.Broadcaster
	opts           Options
	router         *gin.Engine
	log            *zap.Logger
}

func NewHandler(
	trackService service.TrackServicer,
	projectService service.ProjectServicer,
	stats service.StatsProvider,
	registry *realtime.Registry,
	broadcaster *realtime.Broadcaster,
	opts Options,
	log *zap.Logger,
) *Handler {
	if opts.Tick <= 0 {
		opts.Tick = 5 * time.Second
	}

	h := &Handler{
		trackService:   trackService,
		projectService: projectService,
		stats:          stats,
		registry:       registry,
		broadcaster:    broadcaster,
		opts:           opts,
		router:         gin.Default(),
		log:            log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.Use(middleware.CORS())

	h.router.GET("/health", h.healthCheck)
	h.router.POST("/track", h.track)
	h.router.OPTIONS("/track", h.preflight)
	h.router.GET("/track.js", h.trackScript)

	authed := h.router.Group("/", middleware.AuthRequired(h.opts.JWTSecret))
	authed.GET("/realtime", h.realtimeStream)
	authed.GET("/project", h.listProjects)
	authed.POST("/project", h.createProject)
	authed.DELETE("/project/:id", h.deleteProject)
	authed.GET("/snippet", h.snippet)

	stats := authed.Group("/stats/project/:id")
	stats.GET("/realtime", h.realtimeStats)
	stats.GET("/7days", h.dailyStats)
	stats.GET("/countries", h.countryStats)
	stats.GET("/referrers", h.referrerStats)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// track handles POST /track, the unauthenticated beacon endpoint.
func (h *Handler) track(c *gin.Context) {
	var req dto.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == "" || req.PageURL == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Missing required fields: projectId, pageUrl",
		})
		return
	}

	headers := c.Request.Header
	outcome, err := h.trackService.Track(c.Request.Context(), service.TrackInput{
		ProjectID: req.ProjectID,
		PageURL:   req.PageURL,
		Referrer:  req.Referrer,
		UserAgent: req.UserAgent,
		SessionID: req.SessionID,
		IP:        geo.ClientIP(headers),
		Country:   geo.CountryFromHeaders(headers),
		City:      geo.CityFromHeaders(headers),
	})
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Project not found"})
			return
		}
		h.log.Error("Failed to ingest beacon",
			zap.String("project_id", req.ProjectID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusCreated
	if outcome.Updated {
		status = http.StatusOK
	}
	c.JSON(status, dto.TrackResponse{
		Success:    true,
		EventID:    outcome.EventID,
		Updated:    outcome.Updated,
		PageChange: outcome.PageChange,
	})
}

// preflight handles OPTIONS /track. The CORS middleware short-circuits
// preflights before this runs; the route exists so the method is routable.
func (h *Handler) preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// trackScript handles GET /track.js, serving the embeddable snippet.
func (h *Handler) trackScript(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", web.TrackJS)
}

// snippet handles GET /snippet?projectId=, returning the copy-pastable
// script tag for one of the user's projects.
func (h *Handler) snippet(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Project ID is required"})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	if _, err := h.projectService.VerifyOwner(c.Request.Context(), projectID, userID); err != nil {
		h.writeProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SnippetResponse{
		ScriptTag: fmt.Sprintf(`<script defer src="%s/track.js" data-site="%s"></script>`,
			h.opts.PublicBaseURL, projectID),
	})
}

// createProject handles POST /project
func (h *Handler) createProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing required field: name"})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	project, err := h.projectService.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateProjectName) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Project with this name already exists"})
			return
		}
		h.log.Error("Failed to create project",
			zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, toProjectDTO(project))
}

// listProjects handles GET /project
func (h *Handler) listProjects(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	projects, err := h.projectService.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to list projects",
			zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	result := make([]dto.Project, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectDTO(&projects[i]))
	}
	c.JSON(http.StatusOK, result)
}

// deleteProject handles DELETE /project/:id
func (h *Handler) deleteProject(c *gin.Context) {
	projectID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	if err := h.projectService.Delete(c.Request.Context(), userID, projectID); err != nil {
		h.writeProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// realtimeStats handles GET /stats/project/:id/realtime
func (h *Handler) realtimeStats(c *gin.Context) {
	h.projectStats(c, func(projectID string) (interface{}, error) {
		return h.stats.Realtime(c.Request.Context(), projectID)
	})
}

// dailyStats handles GET /stats/project/:id/7days
func (h *Handler) dailyStats(c *gin.Context) {
	h.projectStats(c, func(projectID string) (interface{}, error) {
		return h.stats.Daily(c.Request.Context(), projectID, dailyStatsDays)
	})
}

// countryStats handles GET /stats/project/:id/countries
func (h *Handler) countryStats(c *gin.Context) {
	h.projectStats(c, func(projectID string) (interface{}, error) {
		return h.stats.Countries(c.Request.Context(), projectID, groupStatsDays)
	})
}

// referrerStats handles GET /stats/project/:id/referrers
func (h *Handler) referrerStats(c *gin.Context) {
	h.projectStats(c, func(projectID string) (interface{}, error) {
		return h.stats.Referrers(c.Request.Context(), projectID, groupStatsDays)
	})
}

// projectStats verifies ownership of the :id project and renders one stats
// view.
func (h *Handler) projectStats(c *gin.Context, view func(projectID string) (interface{}, error)) {
	projectID := c.Param("id")
	userID := c.GetString(middleware.ContextUserID)

	if _, err := h.projectService.VerifyOwner(c.Request.Context(), projectID, userID); err != nil {
		h.writeProjectError(c, err)
		return
	}

	result, err := view(projectID)
	if err != nil {
		h.log.Error("Failed to compute stats",
			zap.String("project_id", projectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeProjectError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Project not found"})
		return
	}

	h.log.Error("Project operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
}

func toProjectDTO(p *domain.Project) dto.Project {
	return dto.Project{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
}
