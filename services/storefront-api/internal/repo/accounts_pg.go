package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ecommerce-storefront/shared/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, firstname, lastname, email, phone_number, password, address, cart, created_at, updated_at`

type AccountsPG struct {
	DB DB
}

func (r *AccountsPG) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.Query(ctx, `select `+accountColumns+` from accounts order by created_at`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	return collectAccounts(rows)
}

func (r *AccountsPG) FindByEmail(ctx context.Context, email string) ([]models.Account, error) {
	rows, err := r.DB.Query(ctx, `select `+accountColumns+` from accounts where email = $1 order by created_at`, email)
	if err != nil {
		return nil, fmt.Errorf("query accounts by email: %w", err)
	}
	return collectAccounts(rows)
}

func (r *AccountsPG) FindOneByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.DB.QueryRow(ctx, `select `+accountColumns+` from accounts where email = $1 order by created_at limit 1`, email)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (r *AccountsPG) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a.Cart == nil {
		a.Cart = []models.LineItem{}
	}
	if err := checkShape(a); err != nil {
		return nil, err
	}
	cart, err := json.Marshal(a.Cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}

	now := time.Now().UTC()
	out := *a
	out.ID = uuid.NewString()
	out.CreatedAt = now
	out.UpdatedAt = now

	_, err = r.DB.Exec(ctx, `
		insert into accounts (id, firstname, lastname, email, phone_number, password, address, cart, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
	`, out.ID, out.Firstname, out.Lastname, out.Email, out.PhoneNumber, out.Password, out.Address, string(cart), out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &out, nil
}

// UpdateCartByEmail replaces the cart of the oldest account with that email.
func (r *AccountsPG) UpdateCartByEmail(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error) {
	if cart == nil {
		cart = []models.LineItem{}
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}

	row := r.DB.QueryRow(ctx, `
		update accounts
		set cart = $2::jsonb,
		    updated_at = now()
		where id = (select id from accounts where email = $1 order by created_at limit 1)
		returning `+accountColumns, email, string(b))
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return a, nil
}

func (r *AccountsPG) Ping(ctx context.Context) error {
	var one int
	return r.DB.QueryRow(ctx, `select 1`).Scan(&one)
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		a    models.Account
		cart []byte
	)
	if err := row.Scan(&a.ID, &a.Firstname, &a.Lastname, &a.Email, &a.PhoneNumber, &a.Password, &a.Address, &cart, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeItems(cart, &a.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	defer rows.Close()

	out := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

// unmarshalExact keeps JSON numbers as json.Number so stored line items come
// back byte-for-byte instead of through float64.
func unmarshalExact(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

func decodeItems(raw []byte, dst *[]models.LineItem) error {
	*dst = []models.LineItem{}
	if len(raw) == 0 {
		return nil
	}
	if err := unmarshalExact(raw, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []models.LineItem{}
	}
	return nil
}
