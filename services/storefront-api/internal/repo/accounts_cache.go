package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ecommerce-storefront/shared/pkg/cache"
	"ecommerce-storefront/shared/pkg/models"

	"github.com/rs/zerolog"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AccountsCached puts a read-through cache in front of lookups by email.
// Cache failures are logged and the call falls through to Next.
//
// Cached entries never carry the password hash, so FindOneByEmail (used for
// login) always reads from Next.
type AccountsCached struct {
	Next  AccountStore
	Cache Cache
	TTL   time.Duration
	Log   zerolog.Logger
}

func emailKey(email string) string { return "accounts:email:" + email }

// cachedAccount mirrors models.Account without the password.
type cachedAccount struct {
	ID          string            `json:"id"`
	Firstname   string            `json:"firstname"`
	Lastname    string            `json:"lastname"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phoneNumber"`
	Address     string            `json:"address"`
	Cart        []models.LineItem `json:"cart"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (c *AccountsCached) List(ctx context.Context) ([]models.Account, error) {
	return c.Next.List(ctx)
}

func (c *AccountsCached) FindOneByEmail(ctx context.Context, email string) (*models.Account, error) {
	return c.Next.FindOneByEmail(ctx, email)
}

func (c *AccountsCached) FindByEmail(ctx context.Context, email string) ([]models.Account, error) {
	key := emailKey(email)
	b, err := c.Cache.Get(ctx, key)
	switch {
	case err == nil:
		var hit []cachedAccount
		if err := unmarshalExact(b, &hit); err == nil {
			return fromCached(hit), nil
		}
		c.Log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	case !errors.Is(err, cache.ErrMiss):
		c.Log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	out, err := c.Next.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(toCached(out)); err == nil {
		if err := c.Cache.Set(ctx, key, b, c.TTL); err != nil {
			c.Log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return out, nil
}

func (c *AccountsCached) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	out, err := c.Next.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, out.Email)
	return out, nil
}

func (c *AccountsCached) UpdateCartByEmail(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error) {
	out, err := c.Next.UpdateCartByEmail(ctx, email, cart)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, email)
	return out, nil
}

func (c *AccountsCached) invalidate(ctx context.Context, email string) {
	if err := c.Cache.Delete(ctx, emailKey(email)); err != nil {
		c.Log.Warn().Err(err).Str("email", email).Msg("cache invalidate failed")
	}
}

func toCached(in []models.Account) []cachedAccount {
	out := make([]cachedAccount, 0, len(in))
	for _, a := range in {
		out = append(out, cachedAccount{
			ID:          a.ID,
			Firstname:   a.Firstname,
			Lastname:    a.Lastname,
			Email:       a.Email,
			PhoneNumber: a.PhoneNumber,
			Address:     a.Address,
			Cart:        a.Cart,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		})
	}
	return out
}

func fromCached(in []cachedAccount) []models.Account {
	out := make([]models.Account, 0, len(in))
	for _, a := range in {
		cart := a.Cart
		if cart == nil {
			cart = []models.LineItem{}
		}
		out = append(out, models.Account{
			ID:          a.ID,
			Firstname:   a.Firstname,
			Lastname:    a.Lastname,
			Email:       a.Email,
			PhoneNumber: a.PhoneNumber,
			Address:     a.Address,
			Cart:        cart,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		})
	}
	return out
}
