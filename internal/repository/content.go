package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// ContentRepo persists the content kinds the assistant can manage:
// company updates, projects and gantt items.
type ContentRepo struct {
	db *pgxpool.Pool
}

func NewContentRepo(db *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{db: db}
}

const updateCols = `id, title, content, preview, department, priority, author, attachments, created_at, updated_at`

func scanUpdate(row pgx.Row) (*domain.Update, error) {
	var u domain.Update
	err := row.Scan(&u.ID, &u.Title, &u.Content, &u.Preview, &u.Department,
		&u.Priority, &u.Author, &u.Attachments, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ContentRepo) CreateUpdate(ctx context.Context, u *domain.Update) (*domain.Update, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO updates (title, content, preview, department, priority, author, attachments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+updateCols,
		u.Title, u.Content, u.Preview, u.Department, u.Priority, u.Author, u.Attachments)
	saved, err := scanUpdate(row)
	if err != nil {
		return nil, fmt.Errorf("create update: %w", err)
	}
	return saved, nil
}

func (r *ContentRepo) UpdateUpdate(ctx context.Context, u *domain.Update) (*domain.Update, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE updates
		 SET title = $2, content = $3, preview = $4, department = $5,
		     priority = $6, author = $7, attachments = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+updateCols,
		u.ID, u.Title, u.Content, u.Preview, u.Department, u.Priority, u.Author, u.Attachments)
	saved, err := scanUpdate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUpdateNotFound
		}
		return nil, fmt.Errorf("update update: %w", err)
	}
	return saved, nil
}

func (r *ContentRepo) GetUpdate(ctx context.Context, id int64) (*domain.Update, error) {
	row := r.db.QueryRow(ctx, `SELECT `+updateCols+` FROM updates WHERE id = $1`, id)
	u, err := scanUpdate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUpdateNotFound
		}
		return nil, fmt.Errorf("get update: %w", err)
	}
	return u, nil
}

func (r *ContentRepo) DeleteUpdate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM updates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUpdateNotFound
	}
	return nil
}

func (r *ContentRepo) ListUpdates(ctx context.Context, limit int) ([]domain.Update, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+updateCols+` FROM updates ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	var updates []domain.Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		updates = append(updates, *u)
	}
	return updates, rows.Err()
}

const projectCols = `id, title, description, lead, team, priority, status, completion, start_date, due_date, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Lead, &p.Team,
		&p.Priority, &p.Status, &p.Completion, &p.StartDate, &p.DueDate,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ContentRepo) CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO projects (title, description, lead, team, priority, status, completion, start_date, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+projectCols,
		p.Title, p.Description, p.Lead, p.Team, p.Priority, p.Status, p.Completion, p.StartDate, p.DueDate)
	saved, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return saved, nil
}

func (r *ContentRepo) UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE projects
		 SET title = $2, description = $3, lead = $4, team = $5, priority = $6,
		     status = $7, completion = $8, start_date = $9, due_date = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING `+projectCols,
		p.ID, p.Title, p.Description, p.Lead, p.Team, p.Priority, p.Status,
		p.Completion, p.StartDate, p.DueDate)
	saved, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return saved, nil
}

func (r *ContentRepo) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectCols+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ContentRepo) DeleteProject(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ContentRepo) ListProjects(ctx context.Context, limit int) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+projectCols+` FROM projects ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

const ganttCols = `id, title, item_type, assignee, priority, description, progress, parent_id, start_date, end_date, created_at, updated_at`

func scanGanttItem(row pgx.Row) (*domain.GanttItem, error) {
	var g domain.GanttItem
	err := row.Scan(&g.ID, &g.Title, &g.Type, &g.Assignee, &g.Priority,
		&g.Description, &g.Progress, &g.ParentID, &g.StartDate, &g.EndDate,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *ContentRepo) CreateGanttItem(ctx context.Context, g *domain.GanttItem) (*domain.GanttItem, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO gantt_items (title, item_type, assignee, priority, description, progress, parent_id, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+ganttCols,
		g.Title, g.Type, g.Assignee, g.Priority, g.Description, g.Progress, g.ParentID, g.StartDate, g.EndDate)
	saved, err := scanGanttItem(row)
	if err != nil {
		return nil, fmt.Errorf("create gantt item: %w", err)
	}
	return saved, nil
}

func (r *ContentRepo) UpdateGanttItem(ctx context.Context, g *domain.GanttItem) (*domain.GanttItem, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE gantt_items
		 SET title = $2, item_type = $3, assignee = $4, priority = $5, description = $6,
		     progress = $7, parent_id = $8, start_date = $9, end_date = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING `+ganttCols,
		g.ID, g.Title, g.Type, g.Assignee, g.Priority, g.Description,
		g.Progress, g.ParentID, g.StartDate, g.EndDate)
	saved, err := scanGanttItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGanttItemNotFound
		}
		return nil, fmt.Errorf("update gantt item: %w", err)
	}
	return saved, nil
}

func (r *ContentRepo) GetGanttItem(ctx context.Context, id int64) (*domain.GanttItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ganttCols+` FROM gantt_items WHERE id = $1`, id)
	g, err := scanGanttItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGanttItemNotFound
		}
		return nil, fmt.Errorf("get gantt item: %w", err)
	}
	return g, nil
}

func (r *ContentRepo) DeleteGanttItem(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gantt_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gantt item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGanttItemNotFound
	}
	return nil
}

func (r *ContentRepo) ListGanttItems(ctx context.Context, limit int) ([]domain.GanttItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ganttCols+` FROM gantt_items ORDER BY start_date NULLS LAST, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list gantt items: %w", err)
	}
	defer rows.Close()

	var items []domain.GanttItem
	for rows.Next() {
		g, err := scanGanttItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gantt item: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}
