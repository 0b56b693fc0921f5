package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type conversationRepo interface {
	GetActive(ctx context.Context, owner, contextType string) (*domain.Conversation, error)
	GetByPublicID(ctx context.Context, owner, publicID string) (*domain.Conversation, error)
	DeactivateAll(ctx context.Context, owner, contextType string) error
	Create(ctx context.Context, publicID, owner, contextType string) (*domain.Conversation, error)
	SetTitle(ctx context.Context, id int64, title string) error
	Touch(ctx context.Context, id int64) error
	ListRecent(ctx context.Context, owner string, limit int) ([]domain.Conversation, error)
}

type messageRepo interface {
	Insert(ctx context.Context, m *domain.Message) (*domain.Message, error)
	ListRecent(ctx context.Context, conversationID int64, limit int) ([]domain.Message, error)
	Count(ctx context.Context, conversationID int64) (int64, error)
}

type preferenceRepo interface {
	Get(ctx context.Context, owner string) (*domain.Preference, error)
	Upsert(ctx context.Context, p *domain.Preference) error
}

// ConversationService owns chat persistence: conversations, their
// append-only messages, and per-user assistant preferences.
type ConversationService struct {
	convs        conversationRepo
	msgs         messageRepo
	prefs        preferenceRepo
	defaultModel string
}

func NewConversationService(convs conversationRepo, msgs messageRepo, prefs preferenceRepo, defaultModel string) *ConversationService {
	return &ConversationService{convs: convs, msgs: msgs, prefs: prefs, defaultModel: defaultModel}
}

// GetOrCreateActive returns the owner's active conversation for the
// context type, creating one lazily on first use. Any stale active rows
// are deactivated before the new one is created, so the one-active
// invariant holds even if earlier state was inconsistent.
func (s *ConversationService) GetOrCreateActive(ctx context.Context, owner, contextType string) (*domain.Conversation, error) {
	conv, err := s.convs.GetActive(ctx, owner, contextType)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, fmt.Errorf("get active conversation: %w", err)
	}

	if err := s.convs.DeactivateAll(ctx, owner, contextType); err != nil {
		return nil, fmt.Errorf("deactivate stale conversations: %w", err)
	}

	conv, err = s.convs.Create(ctx, "conv_"+uuid.NewString(), owner, contextType)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	slog.Info("conversation created",
		"owner", owner, "context", contextType, "conversation", conv.PublicID)
	return conv, nil
}

type AppendMessageParams struct {
	Sender           string
	Content          string
	ModelUsed        *string
	FilesContext     *string
	PromptTokens     int
	CompletionTokens int
	CostUSD          decimal.Decimal
}

func (s *ConversationService) AppendMessage(ctx context.Context, conversationID int64, p AppendMessageParams) (*domain.Message, error) {
	msg, err := s.msgs.Insert(ctx, &domain.Message{
		PublicID:         "msg_" + uuid.NewString(),
		ConversationID:   conversationID,
		Sender:           p.Sender,
		Content:          p.Content,
		ModelUsed:        p.ModelUsed,
		FilesContext:     p.FilesContext,
		PromptTokens:     p.PromptTokens,
		CompletionTokens: p.CompletionTokens,
		CostUSD:          p.CostUSD,
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	if err := s.convs.Touch(ctx, conversationID); err != nil {
		slog.Error("touch conversation", "conversation_id", conversationID, "error", err)
	}
	return msg, nil
}

// RecentHistory returns up to limit messages in chronological order.
func (s *ConversationService) RecentHistory(ctx context.Context, conversationID int64, limit int) ([]domain.Message, error) {
	return s.msgs.ListRecent(ctx, conversationID, limit)
}

func (s *ConversationService) CountMessages(ctx context.Context, conversationID int64) (int64, error) {
	return s.msgs.Count(ctx, conversationID)
}

func (s *ConversationService) SetTitle(ctx context.Context, conversationID int64, title string) error {
	return s.convs.SetTitle(ctx, conversationID, title)
}

func (s *ConversationService) ListRecent(ctx context.Context, owner string, limit int) ([]domain.Conversation, error) {
	return s.convs.ListRecent(ctx, owner, limit)
}

func (s *ConversationService) GetByPublicID(ctx context.Context, owner, publicID string) (*domain.Conversation, error) {
	return s.convs.GetByPublicID(ctx, owner, publicID)
}

// Preferences returns the owner's stored preferences, falling back to
// defaults for first-time users.
func (s *ConversationService) Preferences(ctx context.Context, owner string) (*domain.Preference, error) {
	p, err := s.prefs.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &domain.Preference{Owner: owner, SelectedModel: s.defaultModel}, nil
	}
	return p, nil
}

func (s *ConversationService) SavePreferences(ctx context.Context, p *domain.Preference) error {
	if p.SelectedModel == "" {
		p.SelectedModel = s.defaultModel
	}
	return s.prefs.Upsert(ctx, p)
}
