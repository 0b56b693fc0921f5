package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/middleware"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/service"
)

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	cfg           *config.Config
	controller    *service.ChatController
	conversations *service.ConversationService
	content       *service.ContentService
	catalog       *service.Catalog
	gateway       *service.Gateway
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg           *config.Config
	Controller    *service.ChatController
	Conversations *service.ConversationService
	Content       *service.ContentService
	Catalog       *service.Catalog
	Gateway       *service.Gateway
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:           deps.Cfg,
		controller:    deps.Controller,
		conversations: deps.Conversations,
		content:       deps.Content,
		catalog:       deps.Catalog,
		gateway:       deps.Gateway,
	}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(middleware.Recover(), middleware.Logging())

	api := r.Group("/api", middleware.Identity(), middleware.RateLimit(config.RateLimitPerMinute))

	api.POST("/chat/contexts/:context/messages", h.SubmitTurn)
	api.GET("/chat/contexts/:context", h.SwitchContext)
	api.GET("/chat/flags", h.GetFlags)
	api.PUT("/chat/flags", h.SetFlags)
	api.GET("/conversations", h.ListConversations)
	api.GET("/conversations/:id", h.GetConversation)

	api.GET("/models", h.ListModels)
	api.GET("/preferences", h.GetPreferences)
	api.PUT("/preferences", h.SetPreferences)

	api.GET("/updates", h.ListUpdates)
	api.POST("/updates", h.CreateUpdate)
	api.PUT("/updates/:id", h.UpdateUpdate)
	api.DELETE("/updates/:id", h.DeleteUpdate)

	api.GET("/projects", h.ListProjects)
	api.POST("/projects", h.CreateProject)
	api.PUT("/projects/:id", h.UpdateProject)
	api.DELETE("/projects/:id", h.DeleteProject)

	api.GET("/gantt", h.ListGanttItems)
	api.POST("/gantt", h.CreateGanttItem)
	api.PUT("/gantt/:id", h.UpdateGanttItem)
	api.DELETE("/gantt/:id", h.DeleteGanttItem)
}
