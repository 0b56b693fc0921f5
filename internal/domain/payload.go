package domain

// Directive payloads, mirroring the JSON the model is instructed to
// emit. Pointer fields distinguish "omitted" from zero values so edit
// directives can carry partial updates.

type UpdatePayload struct {
	ID         *int64  `json:"id,omitempty"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Department *string `json:"department,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	Author     *string `json:"author,omitempty"`
	Preview    *string `json:"preview,omitempty"`
	// No omitempty: an explicitly empty list must survive re-marshaling.
	Attachments []string `json:"attachments"`
}

type ProjectPayload struct {
	ID          *int64  `json:"id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Lead        *string `json:"lead,omitempty"`
	Team        *string `json:"team,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Completion  *int    `json:"completion,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

type GanttItemPayload struct {
	ID          *int64  `json:"id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Type        *string `json:"type,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Assignee    *string `json:"assignee,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *int64  `json:"parentId,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
}

// DeletePayload carries the target id plus a human-readable title; the
// title is only used in the confirmation message, never for lookup.
type DeletePayload struct {
	ID    *int64 `json:"id"`
	Title string `json:"title"`
}
