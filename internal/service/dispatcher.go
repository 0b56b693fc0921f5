package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// KindActions are the mutation callbacks the surrounding application
// registers for one content kind. The dispatcher treats them as opaque;
// a returned error is recovered into an apology, never propagated.
type KindActions struct {
	Create func(ctx context.Context, payload json.RawMessage) (title string, err error)
	Edit   func(ctx context.Context, id int64, payload json.RawMessage) (title string, err error)
	Delete func(ctx context.Context, id int64, label string) error
}

// Dispatcher applies parsed directives through registered callbacks and
// renders the user-facing confirmation that replaces the raw reply.
type Dispatcher struct {
	actions map[domain.Kind]KindActions
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{actions: make(map[domain.Kind]KindActions)}
}

func (d *Dispatcher) Register(kind domain.Kind, actions KindActions) {
	d.actions[kind] = actions
}

// Registered reports whether callbacks exist for the kind. The
// controller only advertises kinds that are both flagged on and
// registered.
func (d *Dispatcher) Registered(kind domain.Kind) bool {
	_, ok := d.actions[kind]
	return ok
}

// Dispatch performs the directive's action. The returned text is what
// gets persisted and shown; ok is false when the action did not apply.
func (d *Dispatcher) Dispatch(ctx context.Context, dir *domain.Directive) (string, bool) {
	actions, ok := d.actions[dir.Kind]
	if !ok {
		return apology(dir), false
	}

	switch dir.Verb {
	case domain.VerbCreate:
		return d.create(ctx, actions, dir)
	case domain.VerbEdit:
		return d.edit(ctx, actions, dir)
	case domain.VerbDelete:
		return d.delete(ctx, actions, dir)
	}
	return apology(dir), false
}

func (d *Dispatcher) create(ctx context.Context, actions KindActions, dir *domain.Directive) (string, bool) {
	if actions.Create == nil {
		return apology(dir), false
	}

	payload, err := withCreateDefaults(dir.Kind, dir.Payload)
	if err != nil {
		slog.Error("apply create defaults", "kind", string(dir.Kind), "error", err)
		return apology(dir), false
	}

	title, err := actions.Create(ctx, payload)
	if err != nil {
		slog.Error("create callback failed", "kind", string(dir.Kind), "error", err)
		return apology(dir), false
	}
	return fmt.Sprintf("Done! I've created the %s %q.", kindLabel(dir.Kind), title), true
}

func (d *Dispatcher) edit(ctx context.Context, actions KindActions, dir *domain.Directive) (string, bool) {
	if actions.Edit == nil {
		return apology(dir), false
	}

	id, ok := payloadID(dir.Payload)
	if !ok {
		slog.Warn("edit directive without id", "kind", string(dir.Kind))
		return apology(dir), false
	}

	title, err := actions.Edit(ctx, id, dir.Payload)
	if err != nil {
		slog.Error("edit callback failed", "kind", string(dir.Kind), "id", id, "error", err)
		return apology(dir), false
	}
	return fmt.Sprintf("Done! I've updated the %s %q.", kindLabel(dir.Kind), title), true
}

func (d *Dispatcher) delete(ctx context.Context, actions KindActions, dir *domain.Directive) (string, bool) {
	if actions.Delete == nil {
		return apology(dir), false
	}

	var payload domain.DeletePayload
	if err := json.Unmarshal(dir.Payload, &payload); err != nil || payload.ID == nil {
		slog.Warn("delete directive without id", "kind", string(dir.Kind))
		return apology(dir), false
	}

	if err := actions.Delete(ctx, *payload.ID, payload.Title); err != nil {
		slog.Error("delete callback failed", "kind", string(dir.Kind), "id", *payload.ID, "error", err)
		return apology(dir), false
	}
	return fmt.Sprintf("Done! I've deleted the %s %q.", kindLabel(dir.Kind), payload.Title), true
}

// withCreateDefaults fills the optional fields the model tends to omit
// before the payload reaches the creation callback.
func withCreateDefaults(kind domain.Kind, raw json.RawMessage) (json.RawMessage, error) {
	switch kind {
	case domain.KindUpdate:
		var p domain.UpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("unmarshal update payload: %w", err)
		}
		if p.Priority == nil {
			prio := domain.PriorityMedium
			p.Priority = &prio
		}
		if p.Attachments == nil {
			p.Attachments = []string{}
		}
		if p.Preview == nil && p.Content != nil {
			preview := TruncatePreview(*p.Content, config.PreviewMaxLen)
			p.Preview = &preview
		}
		out, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal update payload: %w", err)
		}
		return out, nil
	case domain.KindProject:
		var p domain.ProjectPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("unmarshal project payload: %w", err)
		}
		if p.Priority == nil {
			prio := domain.PriorityMedium
			p.Priority = &prio
		}
		out, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal project payload: %w", err)
		}
		return out, nil
	case domain.KindGanttItem:
		var p domain.GanttItemPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("unmarshal gantt payload: %w", err)
		}
		if p.Priority == nil {
			prio := domain.PriorityMedium
			p.Priority = &prio
		}
		if p.Type == nil {
			t := domain.GanttTypeTask
			p.Type = &t
		}
		out, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal gantt payload: %w", err)
		}
		return out, nil
	}
	return raw, nil
}

// TruncatePreview shortens content for card previews, appending an
// ellipsis only when something was cut.
func TruncatePreview(content string, maxLen int) string {
	if utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:maxLen]) + "..."
}

func payloadID(raw json.RawMessage) (int64, bool) {
	var probe struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.ID == nil {
		return 0, false
	}
	return *probe.ID, true
}

func kindLabel(kind domain.Kind) string {
	switch kind {
	case domain.KindUpdate:
		return "update"
	case domain.KindProject:
		return "project"
	case domain.KindGanttItem:
		return "schedule item"
	}
	return string(kind)
}

func verbLabel(verb domain.Verb) string {
	switch verb {
	case domain.VerbCreate:
		return "creating"
	case domain.VerbEdit:
		return "editing"
	case domain.VerbDelete:
		return "deleting"
	}
	return string(verb)
}

func apology(dir *domain.Directive) string {
	return fmt.Sprintf("I'm sorry, I had trouble %s that %s. Could you give me the details again?",
		verbLabel(dir.Verb), kindLabel(dir.Kind))
}
