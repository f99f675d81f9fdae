package bill

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=identity_mock.go -package=bill
type Identity interface {
	// CurrentUserID returns the authenticated user, if any.
	CurrentUserID(ctx context.Context) (string, bool)
}

// Service exposes the ledger scoped to the current user. Reads without a user
// yield nothing; writes without a user fail with ErrNotAuthenticated.
type Service struct {
	ledger   *Ledger
	identity Identity
}

func NewService(ledger *Ledger, identity Identity) *Service {
	return &Service{ledger: ledger, identity: identity}
}

func (s *Service) Ledger() *Ledger {
	return s.ledger
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Bill, error) {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	return s.ledger.Create(ctx, userID, params)
}

// CreateBatch creates every bill in one write for the current user.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]Bill, error) {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	return s.ledger.CreateBatch(ctx, userID, params)
}

// UserID returns the current user, or ErrNotAuthenticated.
func (s *Service) UserID(ctx context.Context) (string, error) {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return "", ErrNotAuthenticated
	}

	return userID, nil
}

func (s *Service) List(ctx context.Context, filter Filter) []Bill {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return []Bill{}
	}

	return ApplyFilters(ForUser(s.ledger.Snapshot(), userID), filter)
}

func (s *Service) Categories(ctx context.Context) []string {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return []string{}
	}

	return Categories(s.ledger.Snapshot(), userID)
}

// Summary aggregates the current user's bills that match filter.
func (s *Service) Summary(ctx context.Context, filter Filter) Summary {
	return Summarize(s.List(ctx, filter))
}

// Get returns one of the current user's bills. Ownership is checked against
// the stored collection, so the ledger is loaded first if it was not yet.
func (s *Service) Get(ctx context.Context, id string) (*Bill, error) {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if err := s.ledger.Load(ctx); err != nil {
		return nil, err
	}

	b, found := s.ledger.Snapshot().Find(id)
	if !found || b.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return &b, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Bill, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.ledger.Update(ctx, id, params)
}

func (s *Service) Pay(ctx context.Context, id string) (*Bill, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.ledger.MarkPaid(ctx, id)
}

// Delete removes one of the current user's bills. Unknown ids succeed, but a
// bill owned by someone else is left alone and reported as not found.
func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return ErrNotAuthenticated
	}

	if err := s.ledger.Load(ctx); err != nil {
		return err
	}

	b, found := s.ledger.Snapshot().Find(id)
	if found && b.UserID != userID {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.ledger.Delete(ctx, id)
}

// RefreshOverdue runs the overdue rule over the whole ledger at the current instant.
func (s *Service) RefreshOverdue(ctx context.Context) (int, error) {
	return s.ledger.RefreshOverdue(ctx, s.ledger.now())
}
