package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type PreferenceRepo struct {
	db *pgxpool.Pool
}

func NewPreferenceRepo(db *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// Get returns the stored preference or nil when the owner has none yet.
func (r *PreferenceRepo) Get(ctx context.Context, owner string) (*domain.Preference, error) {
	var p domain.Preference
	err := r.db.QueryRow(ctx,
		`SELECT owner, selected_model, show_cost, updated_at
		 FROM preferences WHERE owner = $1`,
		owner).Scan(&p.Owner, &p.SelectedModel, &p.ShowCost, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

func (r *PreferenceRepo) Upsert(ctx context.Context, p *domain.Preference) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO preferences (owner, selected_model, show_cost, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (owner) DO UPDATE
		 SET selected_model = EXCLUDED.selected_model,
		     show_cost = EXCLUDED.show_cost,
		     updated_at = now()`,
		p.Owner, p.SelectedModel, p.ShowCost)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
