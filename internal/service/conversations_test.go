package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

type fakeConvRepo struct {
	nextID int64
	convs  []*domain.Conversation
}

func (r *fakeConvRepo) GetActive(_ context.Context, owner, contextType string) (*domain.Conversation, error) {
	for _, c := range r.convs {
		if c.Owner == owner && c.ContextType == contextType && c.IsActive {
			return c, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (r *fakeConvRepo) GetByPublicID(_ context.Context, owner, publicID string) (*domain.Conversation, error) {
	for _, c := range r.convs {
		if c.Owner == owner && c.PublicID == publicID {
			return c, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (r *fakeConvRepo) DeactivateAll(_ context.Context, owner, contextType string) error {
	for _, c := range r.convs {
		if c.Owner == owner && c.ContextType == contextType {
			c.IsActive = false
		}
	}
	return nil
}

func (r *fakeConvRepo) Create(_ context.Context, publicID, owner, contextType string) (*domain.Conversation, error) {
	r.nextID++
	c := &domain.Conversation{
		ID:          r.nextID,
		PublicID:    publicID,
		Owner:       owner,
		ContextType: contextType,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.convs = append(r.convs, c)
	return c, nil
}

func (r *fakeConvRepo) SetTitle(_ context.Context, id int64, title string) error {
	for _, c := range r.convs {
		if c.ID == id {
			c.Title = &title
			return nil
		}
	}
	return domain.ErrConversationNotFound
}

func (r *fakeConvRepo) Touch(_ context.Context, id int64) error {
	for _, c := range r.convs {
		if c.ID == id {
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrConversationNotFound
}

func (r *fakeConvRepo) ListRecent(_ context.Context, owner string, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range r.convs {
		if c.Owner == owner {
			out = append(out, *c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConvRepo) activeCount(owner, contextType string) int {
	n := 0
	for _, c := range r.convs {
		if c.Owner == owner && c.ContextType == contextType && c.IsActive {
			n++
		}
	}
	return n
}

type fakeMsgRepo struct {
	nextID int64
	msgs   []domain.Message
}

func (r *fakeMsgRepo) Insert(_ context.Context, m *domain.Message) (*domain.Message, error) {
	r.nextID++
	stored := *m
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.msgs = append(r.msgs, stored)
	return &stored, nil
}

func (r *fakeMsgRepo) ListRecent(_ context.Context, conversationID int64, limit int) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeMsgRepo) Count(_ context.Context, conversationID int64) (int64, error) {
	var n int64
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			n++
		}
	}
	return n, nil
}

type fakePrefRepo struct {
	stored *domain.Preference
}

func (r *fakePrefRepo) Get(_ context.Context, owner string) (*domain.Preference, error) {
	if r.stored == nil || r.stored.Owner != owner {
		return nil, nil
	}
	return r.stored, nil
}

func (r *fakePrefRepo) Upsert(_ context.Context, p *domain.Preference) error {
	r.stored = p
	return nil
}

func newTestConversationService(convs *fakeConvRepo, msgs *fakeMsgRepo, prefs *fakePrefRepo) *ConversationService {
	return NewConversationService(convs, msgs, prefs, "openai/gpt-4o-mini")
}

func TestGetOrCreateActiveReusesConversation(t *testing.T) {
	convs := &fakeConvRepo{}
	s := newTestConversationService(convs, &fakeMsgRepo{}, &fakePrefRepo{})
	ctx := context.Background()

	first, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)
	require.True(t, first.IsActive)
	require.True(t, strings.HasPrefix(first.PublicID, "conv_"))

	second, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, convs.activeCount("alice", domain.ContextGeneral))
}

func TestGetOrCreateActiveOnePerContextType(t *testing.T) {
	convs := &fakeConvRepo{}
	s := newTestConversationService(convs, &fakeMsgRepo{}, &fakePrefRepo{})
	ctx := context.Background()

	general, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)
	cm, err := s.GetOrCreateActive(ctx, "alice", domain.ContextContentManagement)
	require.NoError(t, err)
	require.NotEqual(t, general.ID, cm.ID)

	// Interleaved switches keep returning the same pair.
	again, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)
	require.Equal(t, general.ID, again.ID)
	again, err = s.GetOrCreateActive(ctx, "alice", domain.ContextContentManagement)
	require.NoError(t, err)
	require.Equal(t, cm.ID, again.ID)

	require.Equal(t, 1, convs.activeCount("alice", domain.ContextGeneral))
	require.Equal(t, 1, convs.activeCount("alice", domain.ContextContentManagement))
}

func TestGetOrCreateActiveIsolatedPerOwner(t *testing.T) {
	convs := &fakeConvRepo{}
	s := newTestConversationService(convs, &fakeMsgRepo{}, &fakePrefRepo{})
	ctx := context.Background()

	a, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)
	b, err := s.GetOrCreateActive(ctx, "bob", domain.ContextGeneral)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestGetOrCreateActiveHealsStaleRows(t *testing.T) {
	convs := &fakeConvRepo{}
	// Old inactive rows exist; a fresh active conversation is created
	// beside them and stays the only active one.
	convs.convs = []*domain.Conversation{
		{ID: 90, PublicID: "conv_a", Owner: "alice", ContextType: domain.ContextGeneral, IsActive: false},
		{ID: 91, PublicID: "conv_b", Owner: "alice", ContextType: domain.ContextGeneral, IsActive: false},
	}
	convs.nextID = 91

	s := newTestConversationService(convs, &fakeMsgRepo{}, &fakePrefRepo{})
	conv, err := s.GetOrCreateActive(context.Background(), "alice", domain.ContextGeneral)
	require.NoError(t, err)
	require.NotEqual(t, int64(90), conv.ID)
	require.NotEqual(t, int64(91), conv.ID)
	require.Equal(t, 1, convs.activeCount("alice", domain.ContextGeneral))
}

func TestAppendMessageTouchesConversation(t *testing.T) {
	convs := &fakeConvRepo{}
	msgs := &fakeMsgRepo{}
	s := newTestConversationService(convs, msgs, &fakePrefRepo{})
	ctx := context.Background()

	conv, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)
	before := conv.UpdatedAt

	msg, err := s.AppendMessage(ctx, conv.ID, AppendMessageParams{
		Sender:  domain.SenderUser,
		Content: "hello",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(msg.PublicID, "msg_"))
	require.False(t, conv.UpdatedAt.Before(before))

	count, err := s.CountMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestRecentHistoryChronologicalCap(t *testing.T) {
	convs := &fakeConvRepo{}
	msgs := &fakeMsgRepo{}
	s := newTestConversationService(convs, msgs, &fakePrefRepo{})
	ctx := context.Background()

	conv, err := s.GetOrCreateActive(ctx, "alice", domain.ContextGeneral)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := s.AppendMessage(ctx, conv.ID, AppendMessageParams{
			Sender:  domain.SenderUser,
			Content: strings.Repeat("x", i+1),
		})
		require.NoError(t, err)
	}

	history, err := s.RecentHistory(ctx, conv.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 10)
	// Oldest two dropped, order preserved.
	require.Equal(t, "xxx", history[0].Content)
	require.Equal(t, strings.Repeat("x", 12), history[9].Content)
}

func TestPreferencesDefaultsForNewUser(t *testing.T) {
	s := newTestConversationService(&fakeConvRepo{}, &fakeMsgRepo{}, &fakePrefRepo{})
	ctx := context.Background()

	p, err := s.Preferences(ctx, "newbie")
	require.NoError(t, err)
	require.Equal(t, "openai/gpt-4o-mini", p.SelectedModel)
	require.False(t, p.ShowCost)
}

func TestSavePreferencesRoundTrip(t *testing.T) {
	prefs := &fakePrefRepo{}
	s := newTestConversationService(&fakeConvRepo{}, &fakeMsgRepo{}, prefs)
	ctx := context.Background()

	err := s.SavePreferences(ctx, &domain.Preference{Owner: "alice", SelectedModel: "openai/gpt-4o", ShowCost: true})
	require.NoError(t, err)

	p, err := s.Preferences(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "openai/gpt-4o", p.SelectedModel)
	require.True(t, p.ShowCost)
}

func TestSavePreferencesEmptyModelFallsBack(t *testing.T) {
	prefs := &fakePrefRepo{}
	s := newTestConversationService(&fakeConvRepo{}, &fakeMsgRepo{}, prefs)

	err := s.SavePreferences(context.Background(), &domain.Preference{Owner: "alice"})
	require.NoError(t, err)
	require.Equal(t, "openai/gpt-4o-mini", prefs.stored.SelectedModel)
}
