package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

func historyOf(n int) []domain.Message {
	msgs := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAI
		}
		msgs = append(msgs, domain.Message{
			Sender:  sender,
			Content: fmt.Sprintf("entry %d", i),
		})
	}
	return msgs
}

func TestComposeDeterministic(t *testing.T) {
	composer := NewComposer()
	flags := domain.ManagementFlags{Updates: true, Gantt: true}
	history := historyOf(4)
	files := []domain.UploadedFile{{Name: "notes.txt", Content: "hello"}}

	first := composer.Compose(flags, history, files)
	second := composer.Compose(flags, history, files)
	require.Equal(t, first, second)
}

func TestComposeHistoryCap(t *testing.T) {
	composer := NewComposer()
	out := composer.Compose(domain.ManagementFlags{}, historyOf(15), nil)

	for i := 0; i < 5; i++ {
		require.NotContains(t, out, fmt.Sprintf("entry %d\n", i), "entry %d should be dropped", i)
		require.False(t, strings.HasSuffix(out, fmt.Sprintf("entry %d", i)))
	}
	for i := 5; i < 15; i++ {
		require.Contains(t, out, fmt.Sprintf("entry %d", i))
	}

	// Chronological order preserved.
	last := -1
	for i := 5; i < 15; i++ {
		idx := strings.Index(out, fmt.Sprintf("entry %d", i))
		require.Greater(t, idx, last)
		last = idx
	}
}

func TestComposeCapabilityBlocksFollowFlags(t *testing.T) {
	composer := NewComposer()

	out := composer.Compose(domain.ManagementFlags{Updates: true}, nil, nil)
	require.Contains(t, out, "CREATING_UPDATE:")
	require.Contains(t, out, "EDITING_UPDATE:")
	require.Contains(t, out, "DELETING_UPDATE:")
	require.NotContains(t, out, "CREATING_PROJECT:")
	require.NotContains(t, out, "CREATING_GANTT_ITEM:")

	out = composer.Compose(domain.ManagementFlags{Projects: true, Gantt: true}, nil, nil)
	require.NotContains(t, out, "CREATING_UPDATE:")
	require.Contains(t, out, "CREATING_PROJECT:")
	require.Contains(t, out, "CREATING_GANTT_ITEM:")
}

func TestComposeAlwaysIncludesRoleAndSections(t *testing.T) {
	composer := NewComposer()
	out := composer.Compose(domain.ManagementFlags{}, nil, nil)

	require.Contains(t, out, "AeroMail assistant")
	require.Contains(t, out, "Knowledge Base")
	require.Contains(t, out, "Gantt Chart")
}

func TestComposeHistoryLabels(t *testing.T) {
	composer := NewComposer()
	history := []domain.Message{
		{Sender: domain.SenderUser, Content: "hello there"},
		{Sender: domain.SenderAI, Content: "hi, how can I help"},
	}
	out := composer.Compose(domain.ManagementFlags{}, history, nil)

	require.Contains(t, out, "User: hello there")
	require.Contains(t, out, "Assistant: hi, how can I help")
}

func TestComposeFileMarkers(t *testing.T) {
	composer := NewComposer()
	files := []domain.UploadedFile{
		{Name: "a.txt", Content: "alpha"},
		{Name: "b.md", Content: "beta"},
	}
	out := composer.Compose(domain.ManagementFlags{}, nil, files)

	require.Contains(t, out, "--- BEGIN FILE: a.txt ---\nalpha\n--- END FILE: a.txt ---")
	require.Contains(t, out, "--- BEGIN FILE: b.md ---\nbeta\n--- END FILE: b.md ---")
	require.Less(t, strings.Index(out, "a.txt"), strings.Index(out, "b.md"))
}
