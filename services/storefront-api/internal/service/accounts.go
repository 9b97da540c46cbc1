package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecommerce-storefront/services/storefront-api/internal/repo"
	"ecommerce-storefront/shared/pkg/models"

	"golang.org/x/crypto/bcrypt"
)

type AccountsRepo interface {
	List(ctx context.Context) ([]models.Account, error)
	FindByEmail(ctx context.Context, email string) ([]models.Account, error)
	FindOneByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	UpdateCartByEmail(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error)
}

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher salts and hashes with bcrypt. A zero Cost means bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type AccountsService struct {
	Repo   AccountsRepo
	Hasher Hasher
}

type CreateAccountInput struct {
	Firstname   string
	Lastname    string
	Email       string
	PhoneNumber string
	Password    string
	// ConfirmPassword is accepted but not compared with Password.
	ConfirmPassword string
	Address         string
}

func (s *AccountsService) CreateAccount(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	_, err := s.Repo.FindOneByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrAlreadyExists
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	// The stored hash is never blank, so presence of the plaintext is checked here.
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", repo.ErrValidation)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashing, err)
	}

	return s.Repo.Create(ctx, &models.Account{
		Firstname:   in.Firstname,
		Lastname:    in.Lastname,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    hash,
		Address:     in.Address,
		Cart:        []models.LineItem{},
	})
}

func (s *AccountsService) GetAllAccounts(ctx context.Context) ([]models.Account, error) {
	return s.Repo.List(ctx)
}

func (s *AccountsService) GetAccountsByEmail(ctx context.Context, email string) ([]models.Account, error) {
	return s.Repo.FindByEmail(ctx, email)
}

// Authenticate checks credentials in order: presence, account lookup, hash.
func (s *AccountsService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	a, err := s.Repo.FindOneByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if err := s.Hasher.Compare(a.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return a, nil
}

// UpdateCart replaces the whole cart. Items are not merged.
func (s *AccountsService) UpdateCart(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error) {
	a, err := s.Repo.UpdateCartByEmail(ctx, email, cart)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
