package memory

import (
	"context"
	"sort"

	"newsportal/internal/domain/entity"
)

type SubscriptionRepo struct{ s *view }

func sortedIDs(set idSet) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *SubscriptionRepo) ListForReader(_ context.Context, readerID int64) (entity.Subscriptions, error) {
	unlock, err := r.s.enter("Subscriptions.ListForReader")
	if err != nil {
		return entity.Subscriptions{}, err
	}
	defer unlock()
	return entity.Subscriptions{
		PublisherIDs:  sortedIDs(r.s.st.pubSubs[readerID]),
		JournalistIDs: sortedIDs(r.s.st.jourSubs[readerID]),
	}, nil
}

func link(m map[int64]idSet, from, to int64) {
	set, ok := m[from]
	if !ok {
		set = idSet{}
		m[from] = set
	}
	set[to] = struct{}{}
}

func (r *SubscriptionRepo) SubscribePublisher(_ context.Context, readerID, publisherID int64) error {
	unlock, err := r.s.enter("Subscriptions.SubscribePublisher")
	if err != nil {
		return err
	}
	defer unlock()
	link(r.s.st.pubSubs, readerID, publisherID)
	return nil
}

func (r *SubscriptionRepo) UnsubscribePublisher(_ context.Context, readerID, publisherID int64) error {
	unlock, err := r.s.enter("Subscriptions.UnsubscribePublisher")
	if err != nil {
		return err
	}
	defer unlock()
	delete(r.s.st.pubSubs[readerID], publisherID)
	return nil
}

func (r *SubscriptionRepo) SubscribeJournalist(_ context.Context, readerID, journalistID int64) error {
	unlock, err := r.s.enter("Subscriptions.SubscribeJournalist")
	if err != nil {
		return err
	}
	defer unlock()
	link(r.s.st.jourSubs, readerID, journalistID)
	return nil
}

func (r *SubscriptionRepo) UnsubscribeJournalist(_ context.Context, readerID, journalistID int64) error {
	unlock, err := r.s.enter("Subscriptions.UnsubscribeJournalist")
	if err != nil {
		return err
	}
	defer unlock()
	delete(r.s.st.jourSubs[readerID], journalistID)
	return nil
}

func (r *SubscriptionRepo) ClearForReader(_ context.Context, readerID int64) error {
	unlock, err := r.s.enter("Subscriptions.ClearForReader")
	if err != nil {
		return err
	}
	defer unlock()
	delete(r.s.st.pubSubs, readerID)
	delete(r.s.st.jourSubs, readerID)
	return nil
}

func (r *SubscriptionRepo) SubscriberEmails(_ context.Context, publisherID, journalistID int64) ([]string, error) {
	unlock, err := r.s.enter("Subscriptions.SubscriberEmails")
	if err != nil {
		return nil, err
	}
	defer unlock()
	seen := map[string]struct{}{}
	add := func(readerID int64) {
		if p, ok := r.s.st.principals[readerID]; ok && p.Email != "" {
			seen[p.Email] = struct{}{}
		}
	}
	for readerID, pubs := range r.s.st.pubSubs {
		if _, ok := pubs[publisherID]; ok {
			add(readerID)
		}
	}
	for readerID, jours := range r.s.st.jourSubs {
		if _, ok := jours[journalistID]; ok {
			add(readerID)
		}
	}
	out := make([]string, 0, len(seen))
	for email := range seen {
		out = append(out, email)
	}
	sort.Strings(out)
	return out, nil
}
