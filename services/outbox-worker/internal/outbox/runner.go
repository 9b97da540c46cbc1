package outbox

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"ecommerce-storefront/services/outbox-worker/internal/metrics"
	"ecommerce-storefront/shared/pkg/rabbit"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error
}

// Runner relays orders.created rows from outbox_events to the events exchange.
// Rows are claimed with skip locked, so several runners can share the table.
type Runner struct {
	Log     zerolog.Logger
	DB      DB
	Pub     Publisher
	Metrics *metrics.Outbox

	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BackoffMax   time.Duration

	now func() time.Time
}

type EventRow struct {
	ID        string
	EventType string
	Payload   []byte
	Attempts  int
}

func (r *Runner) Run(ctx context.Context) {
	t := time.NewTicker(r.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Log.Info().Msg("outbox runner stopped")
			return
		case <-t.C:
			if err := r.tick(ctx); err != nil {
				r.Log.Error().Err(err).Msg("outbox tick failed")
			}
		}
	}
}

func (r *Runner) tick(ctx context.Context) error {
	if n, err := r.Pending(ctx); err == nil {
		r.Metrics.Pending.Set(float64(n))
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch, err := claim(ctx, tx, r.BatchSize)
	if err != nil {
		return err
	}

	for _, e := range batch {
		if e.Attempts >= r.MaxAttempts {
			if _, err := tx.Exec(ctx, `update outbox_events set last_error=$2, sent_at=now() where id=$1`, e.ID, "max attempts reached"); err != nil {
				return fmt.Errorf("drop %s: %w", e.ID, err)
			}
			r.Metrics.Dropped.Inc()
			r.Log.Warn().Str("id", e.ID).Int("attempts", e.Attempts).Msg("outbox drop (max attempts), marked sent")
			continue
		}

		pubCtx, cancel := rabbit.WithTimeout(ctx)
		err := r.Pub.Publish(pubCtx, e.EventType, e.Payload, amqp.Table{
			"x-outbox-id": e.ID,
			"x-attempts":  int32(e.Attempts),
		})
		cancel()

		if err == nil {
			r.Metrics.Sent.Inc()
			if _, err := tx.Exec(ctx, `update outbox_events set sent_at=now(), last_error=null where id=$1`, e.ID); err != nil {
				return fmt.Errorf("mark sent %s: %w", e.ID, err)
			}
			r.Log.Debug().Str("id", e.ID).Str("rk", e.EventType).Msg("outbox event published")
			continue
		}

		r.Metrics.PublishErrors.Inc()
		next := r.clock().Add(backoff(e.Attempts+1, r.BackoffMax))
		_, err2 := tx.Exec(ctx, `
			update outbox_events
			set attempts = attempts + 1,
			    next_attempt_at = $2,
			    last_error = $3
			where id = $1
		`, e.ID, next, err.Error())
		if err2 != nil {
			return fmt.Errorf("schedule retry %s: %w", e.ID, err2)
		}
		r.Log.Error().Err(err).Str("id", e.ID).Str("rk", e.EventType).Int("attempts", e.Attempts+1).Time("next", next).Msg("publish failed -> retry scheduled")
	}

	return tx.Commit(ctx)
}

func claim(ctx context.Context, tx pgx.Tx, limit int) ([]EventRow, error) {
	rows, err := tx.Query(ctx, `
		select id::text, event_type, payload::text, attempts
		from outbox_events
		where sent_at is null and next_attempt_at <= now()
		order by created_at
		limit $1
		for update skip locked
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	defer rows.Close()

	var batch []EventRow
	for rows.Next() {
		var (
			e           EventRow
			payloadText string
		)
		if err := rows.Scan(&e.ID, &e.EventType, &payloadText, &e.Attempts); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		e.Payload = []byte(payloadText)
		batch = append(batch, e)
	}
	return batch, rows.Err()
}

// Pending counts events that have not been sent or dropped yet.
func (r *Runner) Pending(ctx context.Context) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var n int
	if err := r.DB.QueryRow(ctx2, `select count(*) from outbox_events where sent_at is null`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func backoff(attempt int, max time.Duration) time.Duration {
	sec := math.Pow(2, float64(attempt))
	d := time.Duration(sec) * time.Second
	if d > max {
		return max
	}
	if d < time.Second {
		return time.Second
	}
	return d
}
