package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type ConversationRepo struct {
	db *pgxpool.Pool
}

func NewConversationRepo(db *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationCols = `id, public_id, owner, context_type, title, summary, is_active, created_at, updated_at`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(&c.ID, &c.PublicID, &c.Owner, &c.ContextType, &c.Title,
		&c.Summary, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepo) GetActive(ctx context.Context, owner, contextType string) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+conversationCols+` FROM conversations
		 WHERE owner = $1 AND context_type = $2 AND is_active`,
		owner, contextType)
	c, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get active conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) GetByPublicID(ctx context.Context, owner, publicID string) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+conversationCols+` FROM conversations
		 WHERE owner = $1 AND public_id = $2`,
		owner, publicID)
	c, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

// DeactivateAll clears the active flag for every conversation of the
// (owner, contextType) pair before a fresh active one is created, so
// the partial unique index never rejects the insert.
func (r *ConversationRepo) DeactivateAll(ctx context.Context, owner, contextType string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE conversations SET is_active = FALSE, updated_at = now()
		 WHERE owner = $1 AND context_type = $2 AND is_active`,
		owner, contextType)
	if err != nil {
		return fmt.Errorf("deactivate conversations: %w", err)
	}
	return nil
}

func (r *ConversationRepo) Create(ctx context.Context, publicID, owner, contextType string) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO conversations (public_id, owner, context_type, is_active)
		 VALUES ($1, $2, $3, TRUE)
		 RETURNING `+conversationCols,
		publicID, owner, contextType)
	c, err := scanConversation(row)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) SetTitle(ctx context.Context, id int64, title string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE conversations SET title = $2, updated_at = now() WHERE id = $1`,
		id, title)
	if err != nil {
		return fmt.Errorf("set conversation title: %w", err)
	}
	return nil
}

// Touch bumps updated_at so recency listings track the latest exchange.
func (r *ConversationRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE conversations SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepo) ListRecent(ctx context.Context, owner string, limit int) ([]domain.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+conversationCols+` FROM conversations
		 WHERE owner = $1
		 ORDER BY updated_at DESC
		 LIMIT $2`,
		owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}
