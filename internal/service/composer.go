package service

import (
	"strings"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// Composer assembles the system context sent alongside every user turn.
// Output is a pure function of its inputs so turns are reproducible.
type Composer struct {
	basePrompt string
}

func NewComposer() *Composer {
	return &Composer{basePrompt: rolePrompt()}
}

// Compose builds the full system context: role, capability blocks for
// each enabled management mode, the last entries of the conversation,
// and the attached file contents.
func (c *Composer) Compose(flags domain.ManagementFlags, history []domain.Message, files []domain.UploadedFile) string {
	var b strings.Builder
	b.WriteString(c.basePrompt)

	if flags.Updates {
		b.WriteString("\n\n")
		b.WriteString(capabilityBlock(domain.KindUpdate,
			"company update",
			"title, content, department, priority (low/medium/high), author",
			`{"title": "...", "content": "...", "department": "...", "priority": "medium", "author": "..."}`))
	}
	if flags.Projects {
		b.WriteString("\n\n")
		b.WriteString(capabilityBlock(domain.KindProject,
			"project",
			"title, description, lead, team, priority, startDate (YYYY-MM-DD), dueDate (YYYY-MM-DD)",
			`{"title": "...", "description": "...", "lead": "...", "team": "...", "priority": "medium", "startDate": "2025-01-01", "dueDate": "2025-06-01"}`))
	}
	if flags.Gantt {
		b.WriteString("\n\n")
		b.WriteString(capabilityBlock(domain.KindGanttItem,
			"schedule item",
			"title, type (task/milestone/phase), startDate, endDate, assignee, priority, description, optional parentId",
			`{"title": "...", "type": "task", "startDate": "2025-01-01", "endDate": "2025-01-15", "assignee": "...", "priority": "medium", "description": "..."}`))
	}
	if flags.Knowledge {
		b.WriteString("\n\nYou may reference and summarize knowledge base articles when the user asks about internal documentation.")
	}

	if len(history) > 0 {
		start := 0
		if len(history) > config.HistoryLimit {
			start = len(history) - config.HistoryLimit
		}
		b.WriteString("\n\nRecent conversation:")
		for _, m := range history[start:] {
			label := "User"
			if m.Sender == domain.SenderAI {
				label = "Assistant"
			}
			b.WriteString("\n")
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(m.Content)
		}
	}

	for _, f := range files {
		b.WriteString("\n\n--- BEGIN FILE: ")
		b.WriteString(f.Name)
		b.WriteString(" ---\n")
		b.WriteString(f.Content)
		b.WriteString("\n--- END FILE: ")
		b.WriteString(f.Name)
		b.WriteString(" ---")
	}

	return b.String()
}

func rolePrompt() string {
	return strings.Join([]string{
		"You are the AeroMail assistant, the built-in helper of a company intranet.",
		"",
		"You can reference these application sections:",
		"- Dashboard: company overview and quick links",
		"- Latest Updates: company news and announcements",
		"- Knowledge Base: internal articles and documentation",
		"- Project Hub: project tracking and status",
		"- Gantt Chart: schedules, tasks and milestones",
		"- Company Hub: directory, calendar and polls",
		"",
		"Answer concisely and only about the company workspace.",
	}, "\n")
}

// capabilityBlock instructs the model how to manage one content kind:
// what information each operation needs and the exact sentinel token to
// emit, immediately followed by a single-line JSON object.
func capabilityBlock(kind domain.Kind, label, fields, example string) string {
	return strings.Join([]string{
		"You can manage " + label + "s.",
		"To create one, collect: " + fields + ".",
		"Then reply with the line:",
		domain.Token(domain.VerbCreate, kind) + " " + example,
		"To edit one, include its id plus only the changed fields:",
		domain.Token(domain.VerbEdit, kind) + ` {"id": 1, "title": "..."}`,
		"To delete one, include its id and title:",
		domain.Token(domain.VerbDelete, kind) + ` {"id": 1, "title": "..."}`,
		"The token must start its line and be followed by a single JSON object, with nothing after the object.",
	}, "\n")
}
