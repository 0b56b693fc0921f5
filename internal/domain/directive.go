package domain

import "encoding/json"

type Verb string

const (
	VerbCreate Verb = "create"
	VerbEdit   Verb = "edit"
	VerbDelete Verb = "delete"
)

type Kind string

const (
	KindUpdate    Kind = "update"
	KindProject   Kind = "project"
	KindGanttItem Kind = "gantt_item"
)

// Directive is the structured command extracted from a model reply. It
// is derived, consumed once by the dispatcher, and never persisted.
type Directive struct {
	Verb    Verb
	Kind    Kind
	Payload json.RawMessage
}

// Token returns the sentinel the model emits for this verb/kind pair.
func Token(v Verb, k Kind) string {
	return tokens[v][k]
}

var tokens = map[Verb]map[Kind]string{
	VerbCreate: {
		KindUpdate:    "CREATING_UPDATE:",
		KindProject:   "CREATING_PROJECT:",
		KindGanttItem: "CREATING_GANTT_ITEM:",
	},
	VerbEdit: {
		KindUpdate:    "EDITING_UPDATE:",
		KindProject:   "EDITING_PROJECT:",
		KindGanttItem: "EDITING_GANTT_ITEM:",
	},
	VerbDelete: {
		KindUpdate:    "DELETING_UPDATE:",
		KindProject:   "DELETING_PROJECT:",
		KindGanttItem: "DELETING_GANTT_ITEM:",
	},
}

// Verbs and Kinds enumerate all sentinel combinations for scanning.
var (
	Verbs = []Verb{VerbCreate, VerbEdit, VerbDelete}
	Kinds = []Kind{KindUpdate, KindProject, KindGanttItem}
)
