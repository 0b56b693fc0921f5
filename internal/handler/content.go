package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

const contentListLimit = 100

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUpdateNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrGanttItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("content operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type updateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Preview     string   `json:"preview"`
	Department  string   `json:"department"`
	Priority    string   `json:"priority"`
	Author      string   `json:"author"`
	Attachments []string `json:"attachments"`
}

func (h *Handler) ListUpdates(c *gin.Context) {
	updates, err := h.content.ListUpdates(c.Request.Context(), contentListLimit)
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, updates)
}

func (h *Handler) CreateUpdate(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.content.CreateUpdate(c.Request.Context(), &domain.Update{
		Title:       req.Title,
		Content:     req.Content,
		Preview:     req.Preview,
		Department:  req.Department,
		Priority:    req.Priority,
		Author:      req.Author,
		Attachments: req.Attachments,
	})
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpdateUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.content.UpdateUpdate(c.Request.Context(), &domain.Update{
		ID:          id,
		Title:       req.Title,
		Content:     req.Content,
		Preview:     req.Preview,
		Department:  req.Department,
		Priority:    req.Priority,
		Author:      req.Author,
		Attachments: req.Attachments,
	})
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteUpdate(c.Request.Context(), id); err != nil {
		writeContentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type projectRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Lead        string     `json:"lead"`
	Team        string     `json:"team"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Completion  int        `json:"completion"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.content.ListProjects(c.Request.Context(), contentListLimit)
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.content.CreateProject(c.Request.Context(), &domain.Project{
		Title:       req.Title,
		Description: req.Description,
		Lead:        req.Lead,
		Team:        req.Team,
		Priority:    req.Priority,
		Status:      req.Status,
		Completion:  req.Completion,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.content.UpdateProject(c.Request.Context(), &domain.Project{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Lead:        req.Lead,
		Team:        req.Team,
		Priority:    req.Priority,
		Status:      req.Status,
		Completion:  req.Completion,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteProject(c.Request.Context(), id); err != nil {
		writeContentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ganttItemRequest struct {
	Title       string     `json:"title" binding:"required"`
	Type        string     `json:"type"`
	Assignee    string     `json:"assignee"`
	Priority    string     `json:"priority"`
	Description string     `json:"description"`
	Progress    int        `json:"progress"`
	ParentID    *int64     `json:"parentId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func (h *Handler) ListGanttItems(c *gin.Context) {
	items, err := h.content.ListGanttItems(c.Request.Context(), contentListLimit)
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateGanttItem(c *gin.Context) {
	var req ganttItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.content.CreateGanttItem(c.Request.Context(), &domain.GanttItem{
		Title:       req.Title,
		Type:        req.Type,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Description: req.Description,
		Progress:    req.Progress,
		ParentID:    req.ParentID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpdateGanttItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ganttItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.content.UpdateGanttItem(c.Request.Context(), &domain.GanttItem{
		ID:          id,
		Title:       req.Title,
		Type:        req.Type,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Description: req.Description,
		Progress:    req.Progress,
		ParentID:    req.ParentID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		writeContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteGanttItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteGanttItem(c.Request.Context(), id); err != nil {
		writeContentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
