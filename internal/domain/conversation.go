package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Context types a user can chat in. Each keeps its own active
// conversation; switching contexts never shares history.
const (
	ContextGeneral           = "general"
	ContextContentManagement = "content_management"
	ContextKnowledgeBase     = "knowledge_base"
)

// ValidContext reports whether s names a known chat context type.
func ValidContext(s string) bool {
	switch s {
	case ContextGeneral, ContextContentManagement, ContextKnowledgeBase:
		return true
	}
	return false
}

type Conversation struct {
	ID          int64
	PublicID    string
	Owner       string
	ContextType string
	Title       *string
	Summary     *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message is append-only; rows are never updated after insert.
type Message struct {
	ID               int64
	PublicID         string
	ConversationID   int64
	Sender           string
	Content          string
	ModelUsed        *string
	FilesContext     *string
	PromptTokens     int
	CompletionTokens int
	CostUSD          decimal.Decimal
	CreatedAt        time.Time
}

// Preference holds per-user assistant settings.
type Preference struct {
	Owner         string
	SelectedModel string
	ShowCost      bool
	UpdatedAt     time.Time
}
