package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ecommerce-storefront/services/storefront-api/internal/repo"
	"ecommerce-storefront/shared/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memAccounts struct {
	items   []models.Account
	findErr error
	seq     int
}

func (m *memAccounts) List(context.Context) ([]models.Account, error) {
	return append([]models.Account{}, m.items...), nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range m.items {
		if a.Email == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAccounts) FindOneByEmail(_ context.Context, email string) (*models.Account, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.items {
		if m.items[i].Email == email {
			a := m.items[i]
			return &a, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	m.seq++
	out := *a
	out.ID = fmt.Sprintf("acc-%d", m.seq)
	m.items = append(m.items, out)
	return &out, nil
}

func (m *memAccounts) UpdateCartByEmail(_ context.Context, email string, cart []models.LineItem) (*models.Account, error) {
	for i := range m.items {
		if m.items[i].Email == email {
			m.items[i].Cart = cart
			a := m.items[i]
			return &a, nil
		}
	}
	return nil, repo.ErrNotFound
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error)  { return "", errors.New("entropy exhausted") }
func (failingHasher) Compare(string, string) error { return nil }

func newAccounts() (*AccountsService, *memAccounts) {
	m := &memAccounts{}
	return &AccountsService{Repo: m, Hasher: BcryptHasher{Cost: bcrypt.MinCost}}, m
}

func adaInput() CreateAccountInput {
	return CreateAccountInput{
		Firstname:       "Ada",
		Lastname:        "Lovelace",
		Email:           "a@b.com",
		PhoneNumber:     "+44 20 0000",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Address:         "12 St James's Square",
	}
}

func TestCreateAccount_HashesAndIsFindable(t *testing.T) {
	s, _ := newAccounts()
	ctx := context.Background()

	got, err := s.CreateAccount(ctx, adaInput())
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	assert.NotEqual(t, "secret1", got.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("secret1")))
	assert.Equal(t, []models.LineItem{}, got.Cart)

	found, err := s.GetAccountsByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.NotEqual(t, "secret1", found[0].Password)

	all, err := s.GetAllAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	s, m := newAccounts()
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, adaInput())
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, adaInput())
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Len(t, m.items, 1)
}

func TestCreateAccount_ConfirmPasswordNotCompared(t *testing.T) {
	s, _ := newAccounts()
	in := adaInput()
	in.ConfirmPassword = "something else"

	_, err := s.CreateAccount(context.Background(), in)
	assert.NoError(t, err)
}

func TestCreateAccount_HashingFailure(t *testing.T) {
	s, m := newAccounts()
	s.Hasher = failingHasher{}

	_, err := s.CreateAccount(context.Background(), adaInput())
	assert.ErrorIs(t, err, ErrHashing)
	assert.Empty(t, m.items)
}

func TestCreateAccount_PasswordTooLongForBcrypt(t *testing.T) {
	s, _ := newAccounts()
	in := adaInput()
	in.Password = strings.Repeat("p", 73)

	_, err := s.CreateAccount(context.Background(), in)
	assert.ErrorIs(t, err, ErrHashing)
}

func TestCreateAccount_BlankPassword(t *testing.T) {
	s, m := newAccounts()
	in := adaInput()
	in.Password = "  "

	_, err := s.CreateAccount(context.Background(), in)
	assert.ErrorIs(t, err, repo.ErrValidation)
	assert.Empty(t, m.items)
}

func TestCreateAccount_DuplicateCheckedBeforeBlankPassword(t *testing.T) {
	s, m := newAccounts()
	ctx := context.Background()
	_, err := s.CreateAccount(ctx, adaInput())
	require.NoError(t, err)

	in := adaInput()
	in.Password = ""
	_, err = s.CreateAccount(ctx, in)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, err, repo.ErrValidation)
	assert.Len(t, m.items, 1)
}

func TestCreateAccount_LookupFailure(t *testing.T) {
	s, m := newAccounts()
	m.findErr = errors.New("connection refused")

	_, err := s.CreateAccount(context.Background(), adaInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAuthenticate(t *testing.T) {
	s, _ := newAccounts()
	ctx := context.Background()
	_, err := s.CreateAccount(ctx, adaInput())
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "ok", email: "a@b.com", password: "secret1"},
		{name: "wrong password", email: "a@b.com", password: "wrong", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "x@b.com", password: "secret1", wantErr: ErrNotFound},
		{name: "missing password", email: "a@b.com", wantErr: ErrMissingCredentials},
		{name: "missing email", password: "secret1", wantErr: ErrMissingCredentials},
		{name: "missing beats unknown", email: "x@b.com", wantErr: ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@b.com", got.Email)
		})
	}
}

func TestUpdateCart_ReplacesWholesale(t *testing.T) {
	s, _ := newAccounts()
	ctx := context.Background()
	_, err := s.CreateAccount(ctx, adaInput())
	require.NoError(t, err)

	_, err = s.UpdateCart(ctx, "a@b.com", []models.LineItem{{"sku": "A"}, {"sku": "B"}})
	require.NoError(t, err)

	got, err := s.UpdateCart(ctx, "a@b.com", []models.LineItem{{"sku": "C"}})
	require.NoError(t, err)
	assert.Equal(t, []models.LineItem{{"sku": "C"}}, got.Cart)

	found, err := s.GetAccountsByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, []models.LineItem{{"sku": "C"}}, found[0].Cart)
}

func TestUpdateCart_UnknownEmail(t *testing.T) {
	s, _ := newAccounts()

	_, err := s.UpdateCart(context.Background(), "ghost@b.com", []models.LineItem{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	hash, err := BcryptHasher{}.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
