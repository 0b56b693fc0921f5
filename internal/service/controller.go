package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// UnavailableMessage replaces the reply when every provider failed.
const UnavailableMessage = "I'm sorry, the assistant is temporarily unavailable. Please try again in a moment."

type chatStore interface {
	GetOrCreateActive(ctx context.Context, owner, contextType string) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, conversationID int64, p AppendMessageParams) (*domain.Message, error)
	RecentHistory(ctx context.Context, conversationID int64, limit int) ([]domain.Message, error)
	SetTitle(ctx context.Context, conversationID int64, title string) error
	Preferences(ctx context.Context, owner string) (*domain.Preference, error)
}

type modelGateway interface {
	Send(ctx context.Context, prompt, systemContext, modelID string) (*Reply, error)
}

type directiveDispatcher interface {
	Dispatch(ctx context.Context, dir *domain.Directive) (string, bool)
	Registered(kind domain.Kind) bool
}

// ChatController runs one user turn end to end: persist the user
// message, compose context, call the gateway, apply any directive, and
// persist the reply. One turn may be in flight per (owner, context).
type ChatController struct {
	store      chatStore
	gateway    modelGateway
	composer   *Composer
	dispatcher directiveDispatcher

	flagsMu sync.RWMutex
	flags   map[string]domain.ManagementFlags

	busyMu sync.Mutex
	busy   map[string]bool
}

func NewChatController(store chatStore, gateway modelGateway, composer *Composer, dispatcher directiveDispatcher) *ChatController {
	return &ChatController{
		store:      store,
		gateway:    gateway,
		composer:   composer,
		dispatcher: dispatcher,
		flags:      make(map[string]domain.ManagementFlags),
		busy:       make(map[string]bool),
	}
}

// SetFlags replaces the owner's management-mode flags. Flags are scoped
// per owner; one user's toggles never affect another user's turns.
func (c *ChatController) SetFlags(owner string, flags domain.ManagementFlags) {
	c.flagsMu.Lock()
	defer c.flagsMu.Unlock()
	c.flags[owner] = flags
}

// Flags returns the owner's current flags; owners that never set any
// get the zero value, with everything off.
func (c *ChatController) Flags(owner string) domain.ManagementFlags {
	c.flagsMu.RLock()
	defer c.flagsMu.RUnlock()
	return c.flags[owner]
}

// effectiveFlags masks out kinds that have no registered callbacks, so
// the model is never told about an action nothing can perform.
func (c *ChatController) effectiveFlags(owner string) domain.ManagementFlags {
	flags := c.Flags(owner)
	flags.Updates = flags.Updates && c.dispatcher.Registered(domain.KindUpdate)
	flags.Projects = flags.Projects && c.dispatcher.Registered(domain.KindProject)
	flags.Gantt = flags.Gantt && c.dispatcher.Registered(domain.KindGanttItem)
	return flags
}

// SwitchContext activates (or lazily creates) the conversation for the
// given context type and returns it with its recent history.
func (c *ChatController) SwitchContext(ctx context.Context, owner, contextType string) (*domain.Conversation, []domain.Message, error) {
	conv, err := c.store.GetOrCreateActive(ctx, owner, contextType)
	if err != nil {
		return nil, nil, err
	}
	history, err := c.store.RecentHistory(ctx, conv.ID, config.ChatHistoryPageSize)
	if err != nil {
		return nil, nil, err
	}
	return conv, history, nil
}

// SubmitTurn processes one user submission and returns the persisted AI
// message. Provider and dispatch failures are recovered into
// displayable replies; only input rejection and storage failures error.
func (c *ChatController) SubmitTurn(ctx context.Context, owner, contextType, text string, files []domain.UploadedFile) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyInput
	}

	if !c.tryAcquire(owner, contextType) {
		return nil, domain.ErrTurnInProgress
	}
	defer c.release(owner, contextType)

	files, err := ValidateFiles(files)
	if err != nil {
		return nil, err
	}

	conv, err := c.store.GetOrCreateActive(ctx, owner, contextType)
	if err != nil {
		return nil, fmt.Errorf("activate conversation: %w", err)
	}

	// History is read before the user message is appended so the prompt
	// does not contain the current turn twice.
	history, err := c.store.RecentHistory(ctx, conv.ID, config.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	firstExchange := len(history) == 0

	// Persist the user message before the model call so history is
	// durable even when the provider fails.
	if _, err := c.store.AppendMessage(ctx, conv.ID, AppendMessageParams{
		Sender:       domain.SenderUser,
		Content:      text,
		FilesContext: FilesContext(files),
	}); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	if firstExchange {
		if err := c.store.SetTitle(ctx, conv.ID, deriveTitle(text)); err != nil {
			slog.Error("set conversation title", "conversation_id", conv.ID, "error", err)
		}
	}

	flags := c.effectiveFlags(owner)
	systemContext := c.composer.Compose(flags, history, files)

	modelID := ""
	if prefs, err := c.store.Preferences(ctx, owner); err == nil {
		modelID = prefs.SelectedModel
	} else {
		slog.Error("load preferences", "owner", owner, "error", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	reply, err := c.gateway.Send(reqCtx, text, systemContext, modelID)
	if err != nil {
		slog.Error("gateway send failed", "owner", owner, "context", contextType, "error", err)
		return c.store.AppendMessage(ctx, conv.ID, AppendMessageParams{
			Sender:  domain.SenderAI,
			Content: UnavailableMessage,
		})
	}

	content := reply.Text
	if dir, ok := ParseDirective(reply.Text, flags); ok {
		// The confirmation replaces the raw directive-bearing reply; the
		// sentinel and JSON are never shown to the user.
		content, _ = c.dispatcher.Dispatch(ctx, dir)
	}

	return c.store.AppendMessage(ctx, conv.ID, AppendMessageParams{
		Sender:           domain.SenderAI,
		Content:          content,
		ModelUsed:        &reply.Model,
		PromptTokens:     reply.PromptTokens,
		CompletionTokens: reply.CompletionTokens,
		CostUSD:          reply.CostUSD,
	})
}

func (c *ChatController) tryAcquire(owner, contextType string) bool {
	key := owner + "|" + contextType
	c.busyMu.Lock()
	defer c.busyMu.Unlock()
	if c.busy[key] {
		return false
	}
	c.busy[key] = true
	return true
}

func (c *ChatController) release(owner, contextType string) {
	key := owner + "|" + contextType
	c.busyMu.Lock()
	defer c.busyMu.Unlock()
	delete(c.busy, key)
}

// deriveTitle trims the first user message into a conversation title.
func deriveTitle(text string) string {
	if line, _, found := strings.Cut(text, "\n"); found {
		text = line
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= config.TitleMaxLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:config.TitleMaxLen])) + "..."
}
