package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type mockStore struct {
	mu       sync.Mutex
	conv     domain.Conversation
	messages []domain.Message
	titles   map[int64]string
	prefsErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		conv:   domain.Conversation{ID: 1, PublicID: "conv_test", Owner: "u1", ContextType: domain.ContextGeneral, IsActive: true},
		titles: map[int64]string{},
	}
}

func (m *mockStore) GetOrCreateActive(_ context.Context, owner, contextType string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv := m.conv
	conv.Owner = owner
	conv.ContextType = contextType
	return &conv, nil
}

func (m *mockStore) AppendMessage(_ context.Context, conversationID int64, p AppendMessageParams) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := domain.Message{
		ID:             int64(len(m.messages) + 1),
		ConversationID: conversationID,
		Sender:         p.Sender,
		Content:        p.Content,
		ModelUsed:      p.ModelUsed,
		FilesContext:   p.FilesContext,
	}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *mockStore) RecentHistory(_ context.Context, _ int64, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *mockStore) SetTitle(_ context.Context, conversationID int64, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles[conversationID] = title
	return nil
}

func (m *mockStore) Preferences(_ context.Context, owner string) (*domain.Preference, error) {
	if m.prefsErr != nil {
		return nil, m.prefsErr
	}
	return &domain.Preference{Owner: owner, SelectedModel: "openai/gpt-4o-mini"}, nil
}

type mockGateway struct {
	reply    string
	err      error
	calls    int
	gotText  string
	gotCtx   string
	gotModel string
	block    chan struct{}
}

func (g *mockGateway) Send(_ context.Context, prompt, systemContext, modelID string) (*Reply, error) {
	g.calls++
	g.gotText = prompt
	g.gotCtx = systemContext
	g.gotModel = modelID
	if g.block != nil {
		<-g.block
	}
	if g.err != nil {
		return nil, g.err
	}
	return &Reply{Text: g.reply, Model: modelID, PromptTokens: 5, CompletionTokens: 7}, nil
}

func newTestController(store *mockStore, gw *mockGateway, d *Dispatcher) *ChatController {
	if d == nil {
		d = NewDispatcher()
	}
	return NewChatController(store, gw, NewComposer(), d)
}

func TestSubmitTurnPlainProse(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "AeroMail is the company intranet."}
	c := newTestController(store, gw, nil)

	msg, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "What is AeroMail?", nil)
	require.NoError(t, err)
	require.Equal(t, domain.SenderAI, msg.Sender)
	require.Equal(t, "AeroMail is the company intranet.", msg.Content)

	require.Len(t, store.messages, 2)
	require.Equal(t, domain.SenderUser, store.messages[0].Sender)
	require.Equal(t, "What is AeroMail?", store.messages[0].Content)
}

func TestSubmitTurnAppliesDirective(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "Sure!\nCREATING_UPDATE: {\"title\":\"Launch\",\"content\":\"We launched.\",\"author\":\"Bot\"}"}

	var got domain.UpdatePayload
	d := NewDispatcher()
	d.Register(domain.KindUpdate, KindActions{
		Create: func(_ context.Context, payload json.RawMessage) (string, error) {
			require.NoError(t, json.Unmarshal(payload, &got))
			return *got.Title, nil
		},
	})

	c := newTestController(store, gw, d)
	c.SetFlags("u1", domain.ManagementFlags{Updates: true})

	msg, err := c.SubmitTurn(context.Background(), "u1", domain.ContextContentManagement, "Post an update about the launch", nil)
	require.NoError(t, err)

	// The confirmation replaces the raw directive-bearing reply.
	require.Contains(t, msg.Content, `"Launch"`)
	require.NotContains(t, msg.Content, "CREATING_UPDATE")
	require.NotContains(t, msg.Content, "{")

	require.Equal(t, "Launch", *got.Title)
	require.Equal(t, "We launched.", *got.Content)
	require.Equal(t, "Bot", *got.Author)
	require.Equal(t, domain.PriorityMedium, *got.Priority)
	require.Equal(t, "We launched.", *got.Preview)
}

func TestSubmitTurnDirectiveIgnoredWhenFlagOff(t *testing.T) {
	store := newMockStore()
	raw := "CREATING_UPDATE: {\"title\":\"Launch\",\"content\":\"x\"}"
	gw := &mockGateway{reply: raw}

	called := false
	d := NewDispatcher()
	d.Register(domain.KindUpdate, KindActions{
		Create: func(_ context.Context, _ json.RawMessage) (string, error) {
			called = true
			return "Launch", nil
		},
	})

	c := newTestController(store, gw, d)
	// Flag stays off: the raw reply is persisted verbatim.
	msg, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "post it", nil)
	require.NoError(t, err)
	require.False(t, called)
	require.Equal(t, raw, msg.Content)
}

func TestSubmitTurnFlagsScopedToOwner(t *testing.T) {
	store := newMockStore()
	raw := "CREATING_UPDATE: {\"title\":\"Launch\",\"content\":\"x\"}"
	gw := &mockGateway{reply: raw}

	called := false
	d := NewDispatcher()
	d.Register(domain.KindUpdate, KindActions{
		Create: func(_ context.Context, _ json.RawMessage) (string, error) {
			called = true
			return "Launch", nil
		},
	})

	c := newTestController(store, gw, d)
	c.SetFlags("alice", domain.ManagementFlags{Updates: true})

	// Alice's toggle must not enable directive execution for bob.
	msg, err := c.SubmitTurn(context.Background(), "bob", domain.ContextContentManagement, "post it", nil)
	require.NoError(t, err)
	require.False(t, called)
	require.Equal(t, raw, msg.Content)
	require.False(t, c.Flags("bob").Updates)

	// Alice herself is unaffected.
	msg, err = c.SubmitTurn(context.Background(), "alice", domain.ContextContentManagement, "post it", nil)
	require.NoError(t, err)
	require.True(t, called)
	require.NotContains(t, msg.Content, "CREATING_UPDATE")
}

func TestSubmitTurnGatewayFailure(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{err: domain.ErrAssistantUnavailable}
	c := newTestController(store, gw, nil)

	msg, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "hello", nil)
	require.NoError(t, err)
	require.Equal(t, UnavailableMessage, msg.Content)

	// User message is durable, AI apology persisted after it.
	require.Len(t, store.messages, 2)
	require.Equal(t, "hello", store.messages[0].Content)

	// The controller is Idle again and accepts the next submission.
	gw.err = nil
	gw.reply = "back online"
	msg, err = c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "hello again", nil)
	require.NoError(t, err)
	require.Equal(t, "back online", msg.Content)
}

func TestSubmitTurnEmptyInput(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "x"}
	c := newTestController(store, gw, nil)

	_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "   \n\t ", nil)
	require.ErrorIs(t, err, domain.ErrEmptyInput)
	require.Empty(t, store.messages)
	require.Zero(t, gw.calls)
}

func TestSubmitTurnBusyRejection(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "slow reply", block: make(chan struct{})}
	c := newTestController(store, gw, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "first", nil)
		done <- err
	}()

	// Wait for the first turn to reach the gateway.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.messages) == 1
	}, 2*time.Second, time.Millisecond)

	_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "second", nil)
	require.ErrorIs(t, err, domain.ErrTurnInProgress)

	close(gw.block)
	require.NoError(t, <-done)

	// The slot is released once the turn completes.
	gw.block = nil
	_, err = c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "third", nil)
	require.NoError(t, err)
}

func TestSubmitTurnDerivesTitleOnFirstExchange(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "hi"}
	c := newTestController(store, gw, nil)

	_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "Tell me about the Q3 roadmap", nil)
	require.NoError(t, err)
	require.Equal(t, "Tell me about the Q3 roadmap", store.titles[1])

	// Second exchange must not retitle.
	store.titles[1] = "kept"
	_, err = c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "And Q4?", nil)
	require.NoError(t, err)
	require.Equal(t, "kept", store.titles[1])
}

func TestSubmitTurnHistoryExcludesCurrentMessage(t *testing.T) {
	store := newMockStore()
	store.messages = []domain.Message{
		{Sender: domain.SenderUser, Content: "earlier question"},
		{Sender: domain.SenderAI, Content: "earlier answer"},
	}
	gw := &mockGateway{reply: "ok"}
	c := newTestController(store, gw, nil)

	_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "new question", nil)
	require.NoError(t, err)
	require.Contains(t, gw.gotCtx, "earlier question")
	require.NotContains(t, gw.gotCtx, "new question")
	require.Equal(t, "new question", gw.gotText)
}

func TestSubmitTurnRejectsOversizedFile(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "x"}
	c := newTestController(store, gw, nil)

	files := []domain.UploadedFile{{Name: "big.txt", MimeType: "text/plain", SizeBytes: 11 << 20}}
	_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "read this", files)
	require.ErrorIs(t, err, domain.ErrFileTooLarge)
	require.Empty(t, store.messages)
}

func TestSubmitTurnStoresFilesContext(t *testing.T) {
	store := newMockStore()
	gw := &mockGateway{reply: "summarized"}
	c := newTestController(store, gw, nil)

	files := []domain.UploadedFile{{Name: "notes.txt", Content: "meeting notes", MimeType: "text/plain", SizeBytes: 13}}
	_, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "summarize", files)
	require.NoError(t, err)

	require.NotNil(t, store.messages[0].FilesContext)
	require.Contains(t, *store.messages[0].FilesContext, "meeting notes")
	require.Contains(t, gw.gotCtx, "--- BEGIN FILE: notes.txt ---")
}

func TestSubmitTurnMalformedDirectiveShowsRawReply(t *testing.T) {
	store := newMockStore()
	raw := "Here you go.\nCREATING_UPDATE: {\"title\": broken"
	gw := &mockGateway{reply: raw}

	d := NewDispatcher()
	called := false
	d.Register(domain.KindUpdate, KindActions{
		Create: func(_ context.Context, _ json.RawMessage) (string, error) {
			called = true
			return "", nil
		},
	})

	c := newTestController(store, gw, d)
	c.SetFlags("u1", domain.ManagementFlags{Updates: true})

	msg, err := c.SubmitTurn(context.Background(), "u1", domain.ContextContentManagement, "post", nil)
	require.NoError(t, err)
	require.False(t, called)
	require.Equal(t, raw, msg.Content)
}

func TestSubmitTurnPreferencesFailureStillAnswers(t *testing.T) {
	store := newMockStore()
	store.prefsErr = errors.New("prefs table missing")
	gw := &mockGateway{reply: "answered anyway"}
	c := newTestController(store, gw, nil)

	msg, err := c.SubmitTurn(context.Background(), "u1", domain.ContextGeneral, "hello", nil)
	require.NoError(t, err)
	require.Equal(t, "answered anyway", msg.Content)
}
