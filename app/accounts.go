package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/subwave-io/subwave/domain/account"
	"github.com/subwave-io/subwave/ports"
)

// AccountService manages customer accounts. Authentication proper lives
// outside the engine; this service only stores credentials at signup and
// answers the one-line credential check.
type AccountService struct {
	accounts ports.AccountStore
	hasher   ports.Hasher
	clock    ports.Clock
	idGen    ports.IDGenerator
	logger   zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accounts ports.AccountStore, hasher ports.Hasher, clock ports.Clock, idGen ports.IDGenerator, logger zerolog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		clock:    clock,
		idGen:    idGen,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// Signup creates a new customer account with no subscriptions and an
// empty usage window. An empty id gets a generated one.
func (s *AccountService) Signup(ctx context.Context, id, displayName, password string) (account.Account, error) {
	if id == "" {
		id = s.idGen.New()
	}
	if password == "" {
		return account.Account{}, &ValidationError{Field: "password", Reason: "required"}
	}
	if displayName == "" {
		displayName = id
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return account.Account{}, fmt.Errorf("hash password: %w", err)
	}

	a := account.Account{
		ID:           id,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return account.Account{}, ErrDuplicateAccount
		}
		return account.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info().Str("account", id).Msg("account created")
	return a, nil
}

// Authenticate checks a customer's credentials. The engine trusts its
// callers with account references; this exists for the portal layer.
func (s *AccountService) Authenticate(ctx context.Context, id, password string) (account.Account, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return account.Account{}, err
	}
	if !s.hasher.Compare(a.PasswordHash, password) {
		return account.Account{}, ErrAccountNotFound
	}
	return a, nil
}

// Get retrieves an account with its subscription records and usage window.
func (s *AccountService) Get(ctx context.Context, id string) (account.Account, error) {
	a, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return account.Account{}, ErrAccountNotFound
		}
		return account.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// List returns accounts with pagination.
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]account.Account, error) {
	return s.accounts.List(ctx, limit, offset)
}

// Count returns total account count.
func (s *AccountService) Count(ctx context.Context) (int, error) {
	return s.accounts.Count(ctx)
}

// UpdateContact replaces the account's contact details and display name.
func (s *AccountService) UpdateContact(ctx context.Context, id, displayName string, contact account.Contact) (account.Account, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return account.Account{}, err
	}

	if displayName != "" {
		a.DisplayName = displayName
	}
	a.Contact = contact

	if err := s.accounts.Update(ctx, a); err != nil {
		return account.Account{}, fmt.Errorf("update account: %w", err)
	}

	s.logger.Debug().Str("account", id).Msg("contact details updated")
	return a, nil
}
