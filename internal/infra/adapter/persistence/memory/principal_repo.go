package memory

import (
	"context"
	"fmt"
	"sort"

	"newsportal/internal/domain/entity"
)

type PrincipalRepo struct{ s *view }

func (r *PrincipalRepo) Get(_ context.Context, id int64) (*entity.Principal, error) {
	unlock, err := r.s.enter("Principals.Get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := r.s.st.principals[id]
	if !ok {
		return nil, nil
	}
	return copyPrincipal(p), nil
}

// GetForUpdate needs no row lock here: transactions already run one at a time.
func (r *PrincipalRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Principal, error) {
	return r.Get(ctx, id)
}

func (r *PrincipalRepo) GetByUsername(_ context.Context, username string) (*entity.Principal, error) {
	unlock, err := r.s.enter("Principals.GetByUsername")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, p := range r.s.st.principals {
		if p.Username == username {
			return copyPrincipal(p), nil
		}
	}
	return nil, nil
}

func (r *PrincipalRepo) List(ctx context.Context) ([]*entity.Principal, error) {
	return r.ListByRole(ctx, "")
}

// ListByRole returns principals with role, or all principals when role is empty.
func (r *PrincipalRepo) ListByRole(_ context.Context, role entity.Role) ([]*entity.Principal, error) {
	unlock, err := r.s.enter("Principals.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Principal, 0, len(r.s.st.principals))
	for _, p := range r.s.st.principals {
		if role == "" || p.Role == role {
			out = append(out, copyPrincipal(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PrincipalRepo) Create(_ context.Context, p *entity.Principal) error {
	unlock, err := r.s.enter("Principals.Create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, existing := range r.s.st.principals {
		if existing.Username == p.Username {
			return fmt.Errorf("Create: username %q: %w", p.Username, entity.ErrConflict)
		}
	}
	p.ID = r.s.newID()
	p.CreatedAt = r.s.now()
	r.s.st.principals[p.ID] = copyPrincipal(p)
	return nil
}

func (r *PrincipalRepo) Update(_ context.Context, p *entity.Principal) error {
	unlock, err := r.s.enter("Principals.Update")
	if err != nil {
		return err
	}
	defer unlock()
	existing, ok := r.s.st.principals[p.ID]
	if !ok {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	c := copyPrincipal(p)
	c.PasswordHash = existing.PasswordHash
	c.CreatedAt = existing.CreatedAt
	r.s.st.principals[p.ID] = c
	return nil
}

func (r *PrincipalRepo) AddToPortfolio(_ context.Context, journalistID, articleID int64) error {
	unlock, err := r.s.enter("Principals.AddToPortfolio")
	if err != nil {
		return err
	}
	defer unlock()
	set, ok := r.s.st.portfolio[journalistID]
	if !ok {
		set = idSet{}
		r.s.st.portfolio[journalistID] = set
	}
	set[articleID] = struct{}{}
	return nil
}

func (r *PrincipalRepo) ClearPortfolio(_ context.Context, principalID int64) error {
	unlock, err := r.s.enter("Principals.ClearPortfolio")
	if err != nil {
		return err
	}
	defer unlock()
	delete(r.s.st.portfolio, principalID)
	return nil
}

func (r *PrincipalRepo) PortfolioSize(_ context.Context, principalID int64) (int, error) {
	unlock, err := r.s.enter("Principals.PortfolioSize")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return len(r.s.st.portfolio[principalID]), nil
}
