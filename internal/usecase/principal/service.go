package principal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

// RegisterInput is the sign-up form of a new principal.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	Bio      string
}

// Service provides principal use cases.
type Service struct {
	Repo       repository.PrincipalRepository
	Enforcer   *Enforcer
	BcryptCost int

	dummyOnce sync.Once
	dummy     []byte
}

func NewService(repo repository.PrincipalRepository, tx repository.Transactor, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{Repo: repo, Enforcer: &Enforcer{Tx: tx}, BcryptCost: bcryptCost}
}

// Register validates the input, hashes the password and creates the principal.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Principal, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := entity.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := entity.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &entity.Principal{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Bio:          in.Bio,
	}
	if err := s.Enforcer.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("register principal: %w", err)
	}
	return p, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.Principal, error) {
	p, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}
	if p == nil {
		// 存在しないユーザーでも比較コストを揃える
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return p, nil
}

func (s *Service) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("newsportal-timing-equalizer"), s.BcryptCost)
	})
	return s.dummy
}

// Get returns the principal or ErrPrincipalNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Principal, error) {
	if err := entity.ValidateID("id", id); err != nil {
		return nil, err
	}
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}
	return p, nil
}

// PublishedCount returns how many approved articles are credited to a
// journalist. Other roles hold no portfolio.
func (s *Service) PublishedCount(ctx context.Context, p *entity.Principal) (int, error) {
	if !p.IsJournalist() {
		return 0, nil
	}
	n, err := s.Repo.PortfolioSize(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("portfolio size: %w", err)
	}
	return n, nil
}

// GetByUsername returns the principal or ErrPrincipalNotFound.
func (s *Service) GetByUsername(ctx context.Context, username string) (*entity.Principal, error) {
	p, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}
	return p, nil
}

// ListJournalists returns every principal with the journalist role.
func (s *Service) ListJournalists(ctx context.Context) ([]*entity.Principal, error) {
	out, err := s.Repo.ListByRole(ctx, entity.RoleJournalist)
	if err != nil {
		return nil, fmt.Errorf("list journalists: %w", err)
	}
	return out, nil
}

// ChangeOwnRole switches the role of the calling principal.
func (s *Service) ChangeOwnRole(ctx context.Context, actor *entity.Principal, rawRole string) (*entity.Principal, error) {
	if actor == nil {
		return nil, &entity.AuthorizationError{Action: "change role"}
	}
	return s.setRole(ctx, actor.ID, rawRole)
}

// AdminSetRole switches the role of any principal. It is reserved for the
// administrative CLI and is not reachable over HTTP.
func (s *Service) AdminSetRole(ctx context.Context, username, rawRole string) (*entity.Principal, error) {
	p, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.setRole(ctx, p.ID, rawRole)
}

func (s *Service) setRole(ctx context.Context, id int64, rawRole string) (*entity.Principal, error) {
	role, err := entity.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Role = role
	if err := s.Enforcer.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	return p, nil
}

// UpdateNewsletter sets or clears (nil) the newsletter of an editor or
// journalist. Readers never hold a newsletter.
func (s *Service) UpdateNewsletter(ctx context.Context, actor *entity.Principal, newsletter *string) (*entity.Principal, error) {
	if actor == nil {
		return nil, &entity.AuthorizationError{Action: "edit newsletter"}
	}
	p, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if p.IsReader() {
		return nil, &entity.AuthorizationError{Role: p.Role, Action: "edit newsletter"}
	}
	p.Newsletter = newsletter
	if err := s.Enforcer.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("update newsletter: %w", err)
	}
	return p, nil
}
