package memory

import (
	"context"
	"sort"
	"time"

	"newsportal/internal/domain/entity"
)

type OutboxRepo struct{ s *view }

func (r *OutboxRepo) Enqueue(_ context.Context, ev entity.ApprovalEvent) error {
	unlock, err := r.s.enter("Outbox.Enqueue")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.st.outbox[ev.Key()]; ok {
		return nil
	}
	r.s.st.outbox[ev.Key()] = &entity.OutboxEntry{Event: ev, CreatedAt: r.s.now()}
	return nil
}

func (r *OutboxRepo) Get(_ context.Context, ev entity.ApprovalEvent) (*entity.OutboxEntry, error) {
	unlock, err := r.s.enter("Outbox.Get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	e, ok := r.s.st.outbox[ev.Key()]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (r *OutboxRepo) MarkDelivered(_ context.Context, ev entity.ApprovalEvent, at time.Time) error {
	unlock, err := r.s.enter("Outbox.MarkDelivered")
	if err != nil {
		return err
	}
	defer unlock()
	if e, ok := r.s.st.outbox[ev.Key()]; ok && e.DeliveredAt == nil {
		e.DeliveredAt = &at
		e.Attempts++
		e.LastError = ""
	}
	return nil
}

func (r *OutboxRepo) RecordFailure(_ context.Context, ev entity.ApprovalEvent, reason string) error {
	unlock, err := r.s.enter("Outbox.RecordFailure")
	if err != nil {
		return err
	}
	defer unlock()
	if e, ok := r.s.st.outbox[ev.Key()]; ok && e.DeliveredAt == nil {
		e.Attempts++
		e.LastError = reason
	}
	return nil
}

func (r *OutboxRepo) ListUndelivered(_ context.Context, olderThan time.Time, maxAttempts, limit int) ([]*entity.OutboxEntry, error) {
	unlock, err := r.s.enter("Outbox.ListUndelivered")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.OutboxEntry, 0)
	for _, e := range r.s.st.outbox {
		if e.DeliveredAt == nil && e.CreatedAt.Before(olderThan) && e.Attempts < maxAttempts {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
