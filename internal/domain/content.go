package domain

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Update struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Preview     string    `json:"preview"`
	Department  string    `json:"department"`
	Priority    string    `json:"priority"`
	Author      string    `json:"author"`
	Attachments []string  `json:"attachments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Project struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Lead        string     `json:"lead"`
	Team        string     `json:"team"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Completion  int        `json:"completion"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

const (
	GanttTypeTask      = "task"
	GanttTypeMilestone = "milestone"
	GanttTypePhase     = "phase"
)

type GanttItem struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	Assignee    string     `json:"assignee"`
	Priority    string     `json:"priority"`
	Description string     `json:"description"`
	Progress    int        `json:"progress"`
	ParentID    *int64     `json:"parentId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
