package domain

// ManagementFlags controls which content kinds the assistant may manage.
// Supplied by the surrounding application; read-only for the core.
type ManagementFlags struct {
	Updates   bool `json:"updates"`
	Projects  bool `json:"projects"`
	Gantt     bool `json:"gantt"`
	Knowledge bool `json:"knowledge"`
}

// KindEnabled reports whether directives for the given content kind are
// currently honored.
func (f ManagementFlags) KindEnabled(k Kind) bool {
	switch k {
	case KindUpdate:
		return f.Updates
	case KindProject:
		return f.Projects
	case KindGanttItem:
		return f.Gantt
	}
	return false
}
