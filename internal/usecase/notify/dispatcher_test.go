package notify_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsportal/internal/domain/entity"
	"newsportal/internal/infra/adapter/persistence/memory"
	"newsportal/internal/usecase/notify"
)

/* ───────── スタブ実装 ───────── */

type stubMailer struct {
	mu      sync.Mutex
	calls   [][]string
	err     error
	enabled bool
	block   chan struct{}
}

func newStubMailer() *stubMailer { return &stubMailer{enabled: true} }

func (m *stubMailer) Name() string    { return "email" }
func (m *stubMailer) IsEnabled() bool { return m.enabled }
func (m *stubMailer) Send(ctx context.Context, recipients []string, _ *entity.Article) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string(nil), recipients...))
	return m.err
}

func (m *stubMailer) sent() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type stubBroadcaster struct {
	name  string
	err   error
	panic bool
	calls int32
}

func (b *stubBroadcaster) Name() string    { return b.name }
func (b *stubBroadcaster) IsEnabled() bool { return true }
func (b *stubBroadcaster) Publish(context.Context, *entity.Article) error {
	atomic.AddInt32(&b.calls, 1)
	if b.panic {
		panic("boom")
	}
	return b.err
}

/* ───────── フィクスチャ ───────── */

type fixture struct {
	store   *memory.Store
	mailer  *stubMailer
	social  *stubBroadcaster
	disp    *notify.Dispatcher
	article *entity.Article
	event   entity.ApprovalEvent
}

// newFixture seeds the approval scenario: A follows the publisher, B follows
// the journalist, C follows both and D follows neither.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()

	mk := func(name string, role entity.Role) *entity.Principal {
		p := &entity.Principal{Username: name, Email: name + "@example.com", Role: role}
		require.NoError(t, repos.Principals.Create(ctx, p))
		return p
	}
	pub := &entity.Publisher{Name: "Acme"}
	require.NoError(t, repos.Publishers.Create(ctx, pub))
	j := mk("jane", entity.RoleJournalist)
	a, b, c := mk("a", entity.RoleReader), mk("b", entity.RoleReader), mk("c", entity.RoleReader)
	mk("d", entity.RoleReader)

	require.NoError(t, repos.Subscriptions.SubscribePublisher(ctx, a.ID, pub.ID))
	require.NoError(t, repos.Subscriptions.SubscribeJournalist(ctx, b.ID, j.ID))
	require.NoError(t, repos.Subscriptions.SubscribePublisher(ctx, c.ID, pub.ID))
	require.NoError(t, repos.Subscriptions.SubscribeJournalist(ctx, c.ID, j.ID))

	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	art := &entity.Article{Title: "Budget", Body: "text", PublisherID: pub.ID, JournalistID: j.ID, Approved: true, ApprovedAt: &at}
	store.Seed(art)
	ev := entity.ApprovalEvent{ArticleID: art.ID, ApprovedAt: at}
	require.NoError(t, repos.Outbox.Enqueue(ctx, ev))

	mailer := newStubMailer()
	social := &stubBroadcaster{name: "social"}
	return &fixture{
		store:   store,
		mailer:  mailer,
		social:  social,
		disp:    notify.NewDispatcher(repos, mailer, []notify.Broadcaster{social}, notify.Config{MaxConcurrent: 2, EventTimeout: time.Second, PoolTimeout: 20 * time.Millisecond}),
		article: art,
		event:   ev,
	}
}

func (f *fixture) outbox(t *testing.T) *entity.OutboxEntry {
	t.Helper()
	e, err := f.store.Repositories().Outbox.Get(context.Background(), f.event)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

/* ───────── Handle ───────── */

func TestDispatcher_Handle_OneEmailToUnionOfSubscribers(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Handle(context.Background(), f.event))

	want := [][]string{{"a@example.com", "b@example.com", "c@example.com"}}
	if diff := cmp.Diff(want, f.mailer.sent()); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.social.calls))
	assert.True(t, f.outbox(t).Delivered())
}

func TestDispatcher_Handle_NoSubscribersSendsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repos := f.store.Repositories()
	lonely := &entity.Article{Title: "Quiet", Body: "x", PublisherID: 999, JournalistID: 998, Approved: true, ApprovedAt: f.article.ApprovedAt}
	f.store.Seed(lonely)
	ev := entity.ApprovalEvent{ArticleID: lonely.ID, ApprovedAt: *lonely.ApprovedAt}
	require.NoError(t, repos.Outbox.Enqueue(ctx, ev))

	require.NoError(t, f.disp.Handle(ctx, ev))

	assert.Empty(t, f.mailer.sent())
	entry, err := repos.Outbox.Get(ctx, ev)
	require.NoError(t, err)
	assert.True(t, entry.Delivered())
}

func TestDispatcher_Handle_AlreadyDeliveredIsSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.disp.Handle(ctx, f.event))
	require.NoError(t, f.disp.Handle(ctx, f.event))

	assert.Len(t, f.mailer.sent(), 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.social.calls))
}

func TestDispatcher_Handle_EmailFailureIsRecordedNotReturned(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("relay down")

	require.NoError(t, f.disp.Handle(context.Background(), f.event))

	entry := f.outbox(t)
	assert.False(t, entry.Delivered())
	assert.Equal(t, 1, entry.Attempts)
	assert.Contains(t, entry.LastError, "notification dispatch via email failed: relay down")
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.social.calls), "broadcast is independent of email")
}

func TestDispatcher_Handle_RedeliverySkipsBroadcasts(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("relay down")
	require.NoError(t, f.disp.Handle(context.Background(), f.event))

	f.mailer.err = nil
	require.NoError(t, f.disp.Handle(context.Background(), f.event))

	assert.Len(t, f.mailer.sent(), 2)
	assert.True(t, f.outbox(t).Delivered())
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.social.calls))
}

func TestDispatcher_Handle_BroadcastFailureDoesNotAffectEmail(t *testing.T) {
	f := newFixture(t)
	f.social.err = errors.New("feed unavailable")
	panicky := &stubBroadcaster{name: "newsroom", panic: true}
	disp := notify.NewDispatcher(f.store.Repositories(), f.mailer, []notify.Broadcaster{f.social, panicky}, notify.Config{})

	require.NoError(t, disp.Handle(context.Background(), f.event))

	assert.Len(t, f.mailer.sent(), 1)
	assert.True(t, f.outbox(t).Delivered())
	assert.EqualValues(t, 1, atomic.LoadInt32(&panicky.calls))
}

func TestDispatcher_Handle_DisabledMailerMarksDelivered(t *testing.T) {
	f := newFixture(t)
	f.mailer.enabled = false

	require.NoError(t, f.disp.Handle(context.Background(), f.event))

	assert.Empty(t, f.mailer.sent())
	assert.True(t, f.outbox(t).Delivered())
}

func TestDispatcher_Handle_RepositoryErrorIsReturned(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("Subscriptions.SubscriberEmails", errors.New("db down"))

	err := f.disp.Handle(context.Background(), f.event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Empty(t, f.mailer.sent())
	assert.False(t, f.outbox(t).Delivered())
}

func TestDispatcher_Handle_MissingArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := entity.ApprovalEvent{ArticleID: 12345, ApprovedAt: f.event.ApprovedAt}
	require.NoError(t, f.store.Repositories().Outbox.Enqueue(ctx, ev))

	require.NoError(t, f.disp.Handle(ctx, ev))

	entry, err := f.store.Repositories().Outbox.Get(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Attempts)
	assert.Empty(t, f.mailer.sent())
}

/* ───────── Go / Shutdown ───────── */

func TestDispatcher_Go(t *testing.T) {
	f := newFixture(t)
	done := make(chan error, 1)

	require.NoError(t, f.disp.Go(f.event, func(err error) { done <- err }))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
	require.NoError(t, f.disp.Shutdown(context.Background()))
	assert.True(t, f.outbox(t).Delivered())
	assert.ErrorIs(t, f.disp.Go(f.event, nil), notify.ErrDispatcherClosed)
}

func TestDispatcher_Go_PoolFullDropsEvent(t *testing.T) {
	f := newFixture(t)
	f.mailer.block = make(chan struct{})
	disp := notify.NewDispatcher(f.store.Repositories(), f.mailer, nil, notify.Config{MaxConcurrent: 1, EventTimeout: time.Second, PoolTimeout: 10 * time.Millisecond})

	require.NoError(t, disp.Go(f.event, nil))
	assert.ErrorIs(t, disp.Go(f.event, nil), notify.ErrNotificationDropped)

	close(f.mailer.block)
	require.NoError(t, disp.Shutdown(context.Background()))
}

func TestDispatcher_Shutdown_TimeoutCancelsInFlight(t *testing.T) {
	f := newFixture(t)
	f.mailer.block = make(chan struct{})
	done := make(chan error, 1)
	require.NoError(t, f.disp.Go(f.event, func(err error) { done <- err }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.disp.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight handler was not canceled")
	}
	assert.False(t, f.outbox(t).Delivered())
}

func TestDispatcher_ChannelHealth(t *testing.T) {
	f := newFixture(t)
	want := []notify.ChannelHealthStatus{
		{Name: "email", Enabled: true},
		{Name: "social", Enabled: true},
	}
	assert.Equal(t, want, f.disp.ChannelHealth())
}
