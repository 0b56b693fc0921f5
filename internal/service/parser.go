package service

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// ParseDirective scans a raw model reply for the first enabled sentinel
// token and extracts the JSON payload that follows it. Tokens of
// disabled kinds are plain text and never consume the directive slot.
// The token must start its line; occurrences embedded mid-sentence are
// ignored. A reply with no enabled token, or a payload that is not a
// JSON object, yields (nil, false) and the reply is displayed as-is.
func ParseDirective(raw string, flags domain.ManagementFlags) (*domain.Directive, bool) {
	verb, kind, pos := firstToken(raw, flags)
	if pos < 0 {
		return nil, false
	}

	rest := strings.TrimSpace(raw[pos+len(domain.Token(verb, kind)):])

	// Decode exactly one JSON object; prose or a second directive after
	// the object is ignored rather than poisoning the payload.
	dec := json.NewDecoder(strings.NewReader(rest))
	var payload map[string]json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		slog.Warn("malformed directive payload",
			"verb", string(verb), "kind", string(kind), "error", err)
		return nil, false
	}

	return &domain.Directive{
		Verb:    verb,
		Kind:    kind,
		Payload: json.RawMessage(rest[:dec.InputOffset()]),
	}, true
}

// firstToken finds the earliest enabled sentinel by string position,
// considering only tokens that begin a line. Ties cannot occur: tokens
// share no common position.
func firstToken(raw string, flags domain.ManagementFlags) (domain.Verb, domain.Kind, int) {
	bestPos := -1
	var bestVerb domain.Verb
	var bestKind domain.Kind

	for _, v := range domain.Verbs {
		for _, k := range domain.Kinds {
			if !flags.KindEnabled(k) {
				continue
			}
			pos := lineStartIndex(raw, domain.Token(v, k))
			if pos >= 0 && (bestPos < 0 || pos < bestPos) {
				bestPos = pos
				bestVerb = v
				bestKind = k
			}
		}
	}
	return bestVerb, bestKind, bestPos
}

// lineStartIndex returns the index of the first occurrence of token that
// is at the start of the text or directly preceded by a newline.
func lineStartIndex(raw, token string) int {
	offset := 0
	for {
		idx := strings.Index(raw[offset:], token)
		if idx < 0 {
			return -1
		}
		abs := offset + idx
		if abs == 0 || raw[abs-1] == '\n' {
			return abs
		}
		offset = abs + len(token)
	}
}
