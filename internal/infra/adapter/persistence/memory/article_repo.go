package memory

import (
	"context"
	"sort"
	"time"

	"newsportal/internal/domain/entity"
)

type ArticleRepo struct{ s *view }

func (r *ArticleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	unlock, err := r.s.enter("Articles.Get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	a, ok := r.s.st.articles[id]
	if !ok {
		return nil, nil
	}
	return copyArticle(a), nil
}

// collect returns matching articles ordered by created_at DESC, id DESC, or ASC when oldestFirst.
func (r *ArticleRepo) collect(method string, oldestFirst bool, match func(a *entity.Article) bool) ([]*entity.Article, error) {
	unlock, err := r.s.enter(method)
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Article, 0, len(r.s.st.articles))
	for _, a := range r.s.st.articles {
		if match(a) {
			out = append(out, copyArticle(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if oldestFirst {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (r *ArticleRepo) ListApproved(_ context.Context) ([]*entity.Article, error) {
	return r.collect("Articles.ListApproved", false, func(a *entity.Article) bool { return a.Approved })
}

func (r *ArticleRepo) ListApprovedForReader(_ context.Context, readerID int64) ([]*entity.Article, error) {
	// reads the subscription maps under the same lock taken by collect
	return r.collect("Articles.ListApprovedForReader", false, func(a *entity.Article) bool {
		if !a.Approved {
			return false
		}
		if _, ok := r.s.st.pubSubs[readerID][a.PublisherID]; ok {
			return true
		}
		_, ok := r.s.st.jourSubs[readerID][a.JournalistID]
		return ok
	})
}

func (r *ArticleRepo) ListPending(_ context.Context) ([]*entity.Article, error) {
	return r.collect("Articles.ListPending", true, func(a *entity.Article) bool { return !a.Approved })
}

func (r *ArticleRepo) ListByJournalist(_ context.Context, journalistID int64) ([]*entity.Article, error) {
	return r.collect("Articles.ListByJournalist", false, func(a *entity.Article) bool { return a.JournalistID == journalistID })
}

func (r *ArticleRepo) Create(_ context.Context, article *entity.Article) error {
	unlock, err := r.s.enter("Articles.Create")
	if err != nil {
		return err
	}
	defer unlock()
	article.ID = r.s.newID()
	article.CreatedAt = r.s.now()
	article.Approved = false
	article.ApprovedAt = nil
	r.s.st.articles[article.ID] = copyArticle(article)
	return nil
}

func (r *ArticleRepo) MarkApproved(_ context.Context, id int64, at time.Time) (bool, error) {
	unlock, err := r.s.enter("Articles.MarkApproved")
	if err != nil {
		return false, err
	}
	defer unlock()
	a, ok := r.s.st.articles[id]
	if !ok || a.Approved {
		return false, nil
	}
	a.Approved = true
	a.ApprovedAt = &at
	return true, nil
}

// Seed inserts an article with its given approval state and created_at.
// It exists for fixtures; production writes go through Create and MarkApproved.
func (s *Store) Seed(a *entity.Article) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.newID()
	} else if a.ID >= s.st.nextID {
		s.st.nextID = a.ID + 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.st.articles[a.ID] = copyArticle(a)
}
