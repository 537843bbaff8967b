package principal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/metrics"
	"newsportal/internal/observability/tracing"
	"newsportal/internal/repository"
)

// Enforcer persists principals and keeps their role-exclusive data
// consistent in the same transaction:
//
//   - journalist: every publisher and journalist subscription is removed
//   - reader: the published-article portfolio is emptied and Newsletter is nil
//   - editor: nothing to clear
//
// The role group is derived from the role column, so saving the same role
// twice leaves the principal unchanged.
type Enforcer struct {
	Tx repository.Transactor
}

// Save creates p when p.ID is zero and updates it otherwise.
func (e *Enforcer) Save(ctx context.Context, p *entity.Principal) (err error) {
	ctx, span := tracing.StartSpan(ctx, "principal.enforce",
		attribute.Int64("principal.id", p.ID),
		attribute.String("principal.role", p.Role.String()))
	defer func() { tracing.EndSpan(span, err) }()

	var previous entity.Role
	err = e.Tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var txErr error
		previous, txErr = SaveTx(ctx, repos, p)
		return txErr
	})
	if err != nil {
		return err
	}

	metrics.RecordRoleTransition(previous.String(), p.Role.String())
	return nil
}

// SaveTx applies the role rules using repos of an open transaction and
// returns the role the principal held before (empty for a new principal).
func SaveTx(ctx context.Context, repos repository.Repositories, p *entity.Principal) (entity.Role, error) {
	if !p.Role.IsValid() {
		return "", &entity.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", p.Role)}
	}
	if p.Role == entity.RoleReader {
		p.Newsletter = nil
	}

	var previous entity.Role
	if p.ID == 0 {
		if err := repos.Principals.Create(ctx, p); err != nil {
			return "", fmt.Errorf("create principal: %w", err)
		}
	} else {
		current, err := repos.Principals.Get(ctx, p.ID)
		if err != nil {
			return "", fmt.Errorf("get principal: %w", err)
		}
		if current == nil {
			return "", ErrPrincipalNotFound
		}
		previous = current.Role
		if err := repos.Principals.Update(ctx, p); err != nil {
			return "", fmt.Errorf("update principal: %w", err)
		}
	}

	switch p.Role {
	case entity.RoleJournalist:
		if err := repos.Subscriptions.ClearForReader(ctx, p.ID); err != nil {
			return "", fmt.Errorf("clear subscriptions: %w", err)
		}
	case entity.RoleReader:
		if err := repos.Principals.ClearPortfolio(ctx, p.ID); err != nil {
			return "", fmt.Errorf("clear portfolio: %w", err)
		}
	}
	return previous, nil
}
