package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type contentRepo interface {
	CreateUpdate(ctx context.Context, u *domain.Update) (*domain.Update, error)
	UpdateUpdate(ctx context.Context, u *domain.Update) (*domain.Update, error)
	GetUpdate(ctx context.Context, id int64) (*domain.Update, error)
	DeleteUpdate(ctx context.Context, id int64) error
	ListUpdates(ctx context.Context, limit int) ([]domain.Update, error)

	CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error)
	UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error)
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ListProjects(ctx context.Context, limit int) ([]domain.Project, error)

	CreateGanttItem(ctx context.Context, g *domain.GanttItem) (*domain.GanttItem, error)
	UpdateGanttItem(ctx context.Context, g *domain.GanttItem) (*domain.GanttItem, error)
	GetGanttItem(ctx context.Context, id int64) (*domain.GanttItem, error)
	DeleteGanttItem(ctx context.Context, id int64) error
	ListGanttItems(ctx context.Context, limit int) ([]domain.GanttItem, error)
}

// ContentService is the application mutation layer: the CRUD behind the
// content screens, and the callbacks the dispatcher invokes when the
// assistant manages content.
type ContentService struct {
	repo contentRepo
}

func NewContentService(repo contentRepo) *ContentService {
	return &ContentService{repo: repo}
}

// RegisterActions wires this service's mutations into the dispatcher.
func (s *ContentService) RegisterActions(d *Dispatcher) {
	d.Register(domain.KindUpdate, KindActions{
		Create: s.createUpdateFromPayload,
		Edit:   s.editUpdateFromPayload,
		Delete: func(ctx context.Context, id int64, _ string) error {
			return s.repo.DeleteUpdate(ctx, id)
		},
	})
	d.Register(domain.KindProject, KindActions{
		Create: s.createProjectFromPayload,
		Edit:   s.editProjectFromPayload,
		Delete: func(ctx context.Context, id int64, _ string) error {
			return s.repo.DeleteProject(ctx, id)
		},
	})
	d.Register(domain.KindGanttItem, KindActions{
		Create: s.createGanttItemFromPayload,
		Edit:   s.editGanttItemFromPayload,
		Delete: func(ctx context.Context, id int64, _ string) error {
			return s.repo.DeleteGanttItem(ctx, id)
		},
	})
}

func (s *ContentService) createUpdateFromPayload(ctx context.Context, raw json.RawMessage) (string, error) {
	var p domain.UpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("unmarshal update payload: %w", err)
	}
	if p.Title == nil || p.Content == nil {
		return "", errors.New("update requires title and content")
	}

	u := &domain.Update{Attachments: []string{}}
	applyUpdatePayload(u, p)
	saved, err := s.repo.CreateUpdate(ctx, u)
	if err != nil {
		return "", err
	}
	return saved.Title, nil
}

func (s *ContentService) editUpdateFromPayload(ctx context.Context, id int64, raw json.RawMessage) (string, error) {
	var p domain.UpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("unmarshal update payload: %w", err)
	}

	u, err := s.repo.GetUpdate(ctx, id)
	if err != nil {
		return "", err
	}
	applyUpdatePayload(u, p)
	saved, err := s.repo.UpdateUpdate(ctx, u)
	if err != nil {
		return "", err
	}
	return saved.Title, nil
}

// applyUpdatePayload overlays the payload's present fields. The preview
// follows the content unless the payload pins one explicitly.
func applyUpdatePayload(u *domain.Update, p domain.UpdatePayload) {
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Content != nil {
		u.Content = *p.Content
		u.Preview = TruncatePreview(*p.Content, config.PreviewMaxLen)
	}
	if p.Preview != nil {
		u.Preview = *p.Preview
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Priority != nil {
		u.Priority = *p.Priority
	}
	if p.Author != nil {
		u.Author = *p.Author
	}
	if p.Attachments != nil {
		u.Attachments = p.Attachments
	}
}

func (s *ContentService) createProjectFromPayload(ctx context.Context, raw json.RawMessage) (string, error) {
	var p domain.ProjectPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("unmarshal project payload: %w", err)
	}
	if p.Title == nil {
		return "", errors.New("project requires a title")
	}

	proj := &domain.Project{Status: "planning"}
	if err := applyProjectPayload(proj, p); err != nil {
		return "", err
	}
	saved, err := s.repo.CreateProject(ctx, proj)
	if err != nil {
		return "", err
	}
	return saved.Title, nil
}

func (s *ContentService) editProjectFromPayload(ctx context.Context, id int64, raw json.RawMessage) (string, error) {
	var p domain.ProjectPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("unmarshal project payload: %w", err)
	}

	proj, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return "", err
	}
	if err := applyProjectPayload(proj, p); err != nil {
		return "", err
	}
	saved, err := s.repo.UpdateProject(ctx, proj)
	if err != nil {
		return "", err
	}
	return saved.Title, nil
}

func applyProjectPayload(proj *domain.Project, p domain.ProjectPayload) error {
	if p.Title != nil {
		proj.Title = *p.Title
	}
	if p.Description != nil {
		proj.Description = *p.Description
	}
	if p.Lead != nil {
		proj.Lead = *p.Lead
	}
	if p.Team != nil {
		proj.Team = *p.Team
	}
	if p.Priority != nil {
		proj.Priority = *p.Priority
	}
	if p.Status != nil {
		proj.Status = *p.Status
	}
	if p.Completion != nil {
		proj.Completion = *p.Completion
	}
	if p.StartDate != nil {
		t, err := parseDate(*p.StartDate)
		if err != nil {
			return err
		}
		proj.StartDate = t
	}
	if p.DueDate != nil {
		t, err := parseDate(*p.DueDate)
		if err != nil {
			return err
		}
		proj.DueDate = t
	}
	return nil
}

func (s *ContentService) createGanttItemFromPayload(ctx context.Context, raw json.RawMessage) (string, error) {
	var p domain.GanttItemPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("unmarshal gantt payload: %w", err)
	}
	if p.Title == nil {
		return "", errors.New("schedule item requires a title")
	}

	g := &domain.GanttItem{Type: domain.GanttTypeTask}
	if err := applyGanttPayload(g, p); err != nil {
		return "", err
	}
	saved, err := s.repo.CreateGanttItem(ctx, g)
	if err != nil {
		return "", err
	}
	return saved.Title, nil
}

func (s *ContentService) editGanttItemFromPayload(ctx context.Context, id int64, raw json.RawMessage) (string, error) {
	var p domain.GanttItemPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("unmarshal gantt payload: %w", err)
	}

	g, err := s.repo.GetGanttItem(ctx, id)
	if err != nil {
		return "", err
	}
	if err := applyGanttPayload(g, p); err != nil {
		return "", err
	}
	saved, err := s.repo.UpdateGanttItem(ctx, g)
	if err != nil {
		return "", err
	}
	return saved.Title, nil
}

func applyGanttPayload(g *domain.GanttItem, p domain.GanttItemPayload) error {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Type != nil {
		g.Type = *p.Type
	}
	if p.Assignee != nil {
		g.Assignee = *p.Assignee
	}
	if p.Priority != nil {
		g.Priority = *p.Priority
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
	if p.ParentID != nil {
		g.ParentID = p.ParentID
	}
	if p.StartDate != nil {
		t, err := parseDate(*p.StartDate)
		if err != nil {
			return err
		}
		g.StartDate = t
	}
	if p.EndDate != nil {
		t, err := parseDate(*p.EndDate)
		if err != nil {
			return err
		}
		g.EndDate = t
	}
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", s, err)
	}
	return &t, nil
}

// Plain CRUD surface consumed by the content screens.

func (s *ContentService) ListUpdates(ctx context.Context, limit int) ([]domain.Update, error) {
	return s.repo.ListUpdates(ctx, limit)
}

func (s *ContentService) CreateUpdate(ctx context.Context, u *domain.Update) (*domain.Update, error) {
	if u.Priority == "" {
		u.Priority = domain.PriorityMedium
	}
	if u.Preview == "" {
		u.Preview = TruncatePreview(u.Content, config.PreviewMaxLen)
	}
	if u.Attachments == nil {
		u.Attachments = []string{}
	}
	return s.repo.CreateUpdate(ctx, u)
}

func (s *ContentService) UpdateUpdate(ctx context.Context, u *domain.Update) (*domain.Update, error) {
	return s.repo.UpdateUpdate(ctx, u)
}

func (s *ContentService) DeleteUpdate(ctx context.Context, id int64) error {
	return s.repo.DeleteUpdate(ctx, id)
}

func (s *ContentService) ListProjects(ctx context.Context, limit int) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx, limit)
}

func (s *ContentService) CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	if p.Status == "" {
		p.Status = "planning"
	}
	return s.repo.CreateProject(ctx, p)
}

func (s *ContentService) UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	return s.repo.UpdateProject(ctx, p)
}

func (s *ContentService) DeleteProject(ctx context.Context, id int64) error {
	return s.repo.DeleteProject(ctx, id)
}

func (s *ContentService) ListGanttItems(ctx context.Context, limit int) ([]domain.GanttItem, error) {
	return s.repo.ListGanttItems(ctx, limit)
}

func (s *ContentService) CreateGanttItem(ctx context.Context, g *domain.GanttItem) (*domain.GanttItem, error) {
	if g.Priority == "" {
		g.Priority = domain.PriorityMedium
	}
	if g.Type == "" {
		g.Type = domain.GanttTypeTask
	}
	return s.repo.CreateGanttItem(ctx, g)
}

func (s *ContentService) UpdateGanttItem(ctx context.Context, g *domain.GanttItem) (*domain.GanttItem, error) {
	return s.repo.UpdateGanttItem(ctx, g)
}

func (s *ContentService) DeleteGanttItem(ctx context.Context, id int64) error {
	return s.repo.DeleteGanttItem(ctx, id)
}
