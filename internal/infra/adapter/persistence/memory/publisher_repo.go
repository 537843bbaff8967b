package memory

import (
	"context"
	"sort"

	"newsportal/internal/domain/entity"
)

type PublisherRepo struct{ s *view }

func (r *PublisherRepo) Get(_ context.Context, id int64) (*entity.Publisher, error) {
	unlock, err := r.s.enter("Publishers.Get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := r.s.st.publishers[id]
	if !ok {
		return nil, nil
	}
	return copyPublisher(p), nil
}

func (r *PublisherRepo) List(_ context.Context) ([]*entity.Publisher, error) {
	unlock, err := r.s.enter("Publishers.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Publisher, 0, len(r.s.st.publishers))
	for _, p := range r.s.st.publishers {
		out = append(out, copyPublisher(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PublisherRepo) Create(_ context.Context, p *entity.Publisher) error {
	unlock, err := r.s.enter("Publishers.Create")
	if err != nil {
		return err
	}
	defer unlock()
	p.ID = r.s.newID()
	p.CreatedAt = r.s.now()
	r.s.st.publishers[p.ID] = &entity.Publisher{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
	return nil
}

func (r *PublisherRepo) AddEditor(_ context.Context, publisherID, editorID int64) error {
	unlock, err := r.s.enter("Publishers.AddEditor")
	if err != nil {
		return err
	}
	defer unlock()
	if p, ok := r.s.st.publishers[publisherID]; ok {
		p.EditorIDs = addSorted(p.EditorIDs, editorID)
	}
	return nil
}

func (r *PublisherRepo) AddJournalist(_ context.Context, publisherID, journalistID int64) error {
	unlock, err := r.s.enter("Publishers.AddJournalist")
	if err != nil {
		return err
	}
	defer unlock()
	if p, ok := r.s.st.publishers[publisherID]; ok {
		p.JournalistIDs = addSorted(p.JournalistIDs, journalistID)
	}
	return nil
}

func addSorted(ids []int64, id int64) []int64 {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
