package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecommerce-storefront/shared/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, firstname, lastname, email, phone_number, address, orders, total_amount::text, created_at`

// OrdersPG stores orders and, in the same transaction, queues an orders.created
// event for the outbox worker.
type OrdersPG struct {
	DB     DB
	Outbox *OutboxPG
}

func (r *OrdersPG) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if err := checkShape(o); err != nil {
		return nil, err
	}
	items, err := json.Marshal(o.Orders)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}

	out := *o
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now().UTC()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		insert into orders (id, firstname, lastname, email, phone_number, address, orders, total_amount, created_at)
		values ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::numeric, $9)
	`, out.ID, out.Firstname, out.Lastname, out.Email, out.PhoneNumber, out.Address, string(items), out.TotalAmount.String(), out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if r.Outbox != nil {
		evt := models.NewOrderPlacedEvent(&out)
		if err := r.Outbox.Enqueue(ctx, tx, evt.ID, evt.OrderID, evt.Type, evt); err != nil {
			return nil, fmt.Errorf("outbox enqueue: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return &out, nil
}

func (r *OrdersPG) List(ctx context.Context) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, `select `+orderColumns+` from orders order by created_at`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o     models.Order
		items []byte
		total string
	)
	if err := row.Scan(&o.ID, &o.Firstname, &o.Lastname, &o.Email, &o.PhoneNumber, &o.Address, &items, &total, &o.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeItems(items, &o.Orders); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	amount, err := models.NewAmount(total)
	if err != nil {
		return nil, fmt.Errorf("decode total amount: %w", err)
	}
	o.TotalAmount = amount
	return &o, nil
}
