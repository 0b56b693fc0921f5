package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type MessageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepo(db *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageCols = `id, public_id, conversation_id, sender, content, model_used,
	files_context, prompt_tokens, completion_tokens, cost_usd, created_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.PublicID, &m.ConversationID, &m.Sender, &m.Content,
		&m.ModelUsed, &m.FilesContext, &m.PromptTokens, &m.CompletionTokens,
		&m.CostUSD, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO messages (public_id, conversation_id, sender, content,
		     model_used, files_context, prompt_tokens, completion_tokens, cost_usd)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+messageCols,
		m.PublicID, m.ConversationID, m.Sender, m.Content,
		m.ModelUsed, m.FilesContext, m.PromptTokens, m.CompletionTokens, m.CostUSD)
	saved, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return saved, nil
}

// ListRecent returns the most recent messages in chronological order.
func (r *MessageRepo) ListRecent(ctx context.Context, conversationID int64, limit int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+messageCols+` FROM (
		     SELECT `+messageCols+` FROM messages
		     WHERE conversation_id = $1
		     ORDER BY id DESC
		     LIMIT $2
		 ) recent
		 ORDER BY id ASC`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) Count(ctx context.Context, conversationID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`,
		conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
