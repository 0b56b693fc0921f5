package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/middleware"
)

type attachedFile struct {
	Name     string `json:"name" binding:"required"`
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type submitTurnRequest struct {
	Text  string         `json:"text"`
	Files []attachedFile `json:"files"`
}

type messageResponse struct {
	ID               string    `json:"id"`
	Sender           string    `json:"sender"`
	Content          string    `json:"content"`
	ModelUsed        *string   `json:"modelUsed,omitempty"`
	FilesContext     *string   `json:"filesContext,omitempty"`
	PromptTokens     int       `json:"promptTokens,omitempty"`
	CompletionTokens int       `json:"completionTokens,omitempty"`
	CostUSD          string    `json:"costUsd,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type conversationResponse struct {
	ID          string    `json:"id"`
	ContextType string    `json:"contextType"`
	Title       *string   `json:"title,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:               m.PublicID,
		Sender:           m.Sender,
		Content:          m.Content,
		ModelUsed:        m.ModelUsed,
		FilesContext:     m.FilesContext,
		PromptTokens:     m.PromptTokens,
		CompletionTokens: m.CompletionTokens,
		CostUSD:          m.CostUSD.String(),
		CreatedAt:        m.CreatedAt,
	}
}

func toConversationResponse(c *domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:          c.PublicID,
		ContextType: c.ContextType,
		Title:       c.Title,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// SubmitTurn runs one chat turn and returns the persisted AI message.
func (h *Handler) SubmitTurn(c *gin.Context) {
	var req submitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	files := make([]domain.UploadedFile, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, domain.UploadedFile{
			Name:      f.Name,
			Content:   f.Content,
			MimeType:  f.MimeType,
			SizeBytes: int64(len(f.Content)),
		})
	}

	contextType := c.Param("context")
	if !domain.ValidContext(contextType) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown context type"})
		return
	}

	owner := middleware.GetUser(c)
	msg, err := h.controller.SubmitTurn(c.Request.Context(), owner, contextType, req.Text, files)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message text is empty"})
		case errors.Is(err, domain.ErrTurnInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "a turn is already in progress"})
		case errors.Is(err, domain.ErrFileTooLarge),
			errors.Is(err, domain.ErrFileTypeNotAllowed),
			errors.Is(err, domain.ErrTooManyFiles):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			slog.Error("submit turn", "owner", owner, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, toMessageResponse(msg))
}

// SwitchContext activates the conversation for the context type and
// returns it with recent history.
func (h *Handler) SwitchContext(c *gin.Context) {
	contextType := c.Param("context")
	if !domain.ValidContext(contextType) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown context type"})
		return
	}

	owner := middleware.GetUser(c)
	conv, history, err := h.controller.SwitchContext(c.Request.Context(), owner, contextType)
	if err != nil {
		slog.Error("switch context", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	msgs := make([]messageResponse, 0, len(history))
	for i := range history {
		msgs = append(msgs, toMessageResponse(&history[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation": toConversationResponse(conv),
		"messages":     msgs,
	})
}

func (h *Handler) GetFlags(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Flags(middleware.GetUser(c)))
}

func (h *Handler) SetFlags(c *gin.Context) {
	var flags domain.ManagementFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.controller.SetFlags(middleware.GetUser(c), flags)
	c.JSON(http.StatusOK, flags)
}

func (h *Handler) ListConversations(c *gin.Context) {
	limit := config.RecentConversationsLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	owner := middleware.GetUser(c)
	convs, err := h.conversations.ListRecent(c.Request.Context(), owner, limit)
	if err != nil {
		slog.Error("list conversations", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]conversationResponse, 0, len(convs))
	for i := range convs {
		out = append(out, toConversationResponse(&convs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetConversation returns one of the owner's conversations with its
// recent messages, looked up by public ID.
func (h *Handler) GetConversation(c *gin.Context) {
	owner := middleware.GetUser(c)
	conv, err := h.conversations.GetByPublicID(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		slog.Error("get conversation", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	history, err := h.conversations.RecentHistory(c.Request.Context(), conv.ID, config.ChatHistoryPageSize)
	if err != nil {
		slog.Error("load conversation history", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	total, err := h.conversations.CountMessages(c.Request.Context(), conv.ID)
	if err != nil {
		slog.Error("count conversation messages", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	msgs := make([]messageResponse, 0, len(history))
	for i := range history {
		msgs = append(msgs, toMessageResponse(&history[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation":  toConversationResponse(conv),
		"messages":      msgs,
		"totalMessages": total,
	})
}

func (h *Handler) ListModels(c *gin.Context) {
	models, err := h.catalog.ListModels(c.Request.Context())
	if err != nil {
		slog.Error("list models", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, models)
}

type preferencesRequest struct {
	SelectedModel string `json:"selectedModel"`
	ShowCost      bool   `json:"showCost"`
}

func (h *Handler) GetPreferences(c *gin.Context) {
	owner := middleware.GetUser(c)
	prefs, err := h.conversations.Preferences(c.Request.Context(), owner)
	if err != nil {
		slog.Error("get preferences", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"selectedModel": prefs.SelectedModel,
		"showCost":      prefs.ShowCost,
	})
}

func (h *Handler) SetPreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	owner := middleware.GetUser(c)
	// Unknown model IDs fail closed to the default, matching the gateway.
	model := h.gateway.Resolve(req.SelectedModel).ID
	prefs := &domain.Preference{Owner: owner, SelectedModel: model, ShowCost: req.ShowCost}
	if err := h.conversations.SavePreferences(c.Request.Context(), prefs); err != nil {
		slog.Error("save preferences", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"selectedModel": prefs.SelectedModel,
		"showCost":      prefs.ShowCost,
	})
}
