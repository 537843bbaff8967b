// Package memory provides in-process implementations of the repository interfaces.
// It backs local development without PostgreSQL and the use case tests.
package memory

import (
	"context"
	"sync"
	"time"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

type idSet map[int64]struct{}

func (s idSet) clone() idSet {
	out := make(idSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

type state struct {
	principals map[int64]*entity.Principal
	publishers map[int64]*entity.Publisher
	articles   map[int64]*entity.Article
	pubSubs    map[int64]idSet // reader → publishers
	jourSubs   map[int64]idSet // reader → journalists
	portfolio  map[int64]idSet // journalist → articles
	outbox     map[string]*entity.OutboxEntry
	nextID     int64
}

func newState() *state {
	return &state{
		principals: map[int64]*entity.Principal{},
		publishers: map[int64]*entity.Publisher{},
		articles:   map[int64]*entity.Article{},
		pubSubs:    map[int64]idSet{},
		jourSubs:   map[int64]idSet{},
		portfolio:  map[int64]idSet{},
		outbox:     map[string]*entity.OutboxEntry{},
		nextID:     1,
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.principals {
		c.principals[k] = copyPrincipal(v)
	}
	for k, v := range s.publishers {
		c.publishers[k] = copyPublisher(v)
	}
	for k, v := range s.articles {
		c.articles[k] = copyArticle(v)
	}
	for k, v := range s.pubSubs {
		c.pubSubs[k] = v.clone()
	}
	for k, v := range s.jourSubs {
		c.jourSubs[k] = v.clone()
	}
	for k, v := range s.portfolio {
		c.portfolio[k] = v.clone()
	}
	for k, v := range s.outbox {
		e := *v
		c.outbox[k] = &e
	}
	return c
}

// Store holds every table in memory behind a single mutex.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	st    *state
	now   func() time.Time
	fails map[string]error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now, fails: map[string]error{}}
}

// SetClock replaces the time source used for created_at columns.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailOn makes every later call of method ("Articles.MarkApproved", "WithinTx", ...) return err.
// Passing a nil err clears the failure.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, method)
		return
	}
	s.fails[method] = err
}

// view is the store as seen by one set of repositories. Outside a
// transaction every call first takes txMu, so it waits for an open
// transaction to commit or roll back and never observes its writes.
type view struct {
	*Store
	inTx bool
}

// enter locks the store for a repository call named "<Repo>.<Method>".
// It returns the injected failure for that call, already unlocked.
func (v *view) enter(method string) (func(), error) {
	if !v.inTx {
		v.txMu.Lock()
	}
	v.mu.Lock()
	release := func() {
		v.mu.Unlock()
		if !v.inTx {
			v.txMu.Unlock()
		}
	}
	if err := v.fails[method]; err != nil {
		release()
		return func() {}, err
	}
	return release, nil
}

func (s *Store) newID() int64 {
	id := s.st.nextID
	s.st.nextID++
	return id
}

// Repositories returns repositories for use outside a transaction.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(false)
}

func (s *Store) repositories(inTx bool) repository.Repositories {
	v := &view{Store: s, inTx: inTx}
	return repository.Repositories{
		Principals:    &PrincipalRepo{s: v},
		Publishers:    &PublisherRepo{s: v},
		Subscriptions: &SubscriptionRepo{s: v},
		Articles:      &ArticleRepo{s: v},
		Outbox:        &OutboxRepo{s: v},
	}
}

// WithinTx runs fn while holding txMu, so calls through Repositories block
// until it finishes. A failing fn restores the snapshot taken on entry.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	if err := s.fails["WithinTx"]; err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.repositories(true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.Transactor = (*Store)(nil)

func copyPrincipal(p *entity.Principal) *entity.Principal {
	c := *p
	if p.Newsletter != nil {
		v := *p.Newsletter
		c.Newsletter = &v
	}
	return &c
}

func copyPublisher(p *entity.Publisher) *entity.Publisher {
	c := *p
	c.EditorIDs = append([]int64(nil), p.EditorIDs...)
	c.JournalistIDs = append([]int64(nil), p.JournalistIDs...)
	return &c
}

func copyArticle(a *entity.Article) *entity.Article {
	c := *a
	if a.ApprovedAt != nil {
		t := *a.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}
