package repo

import (
	"context"
	"fmt"

	"ecommerce-storefront/shared/pkg/migrations"
	"ecommerce-storefront/shared/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type AccountStore interface {
	List(ctx context.Context) ([]models.Account, error)
	FindByEmail(ctx context.Context, email string) ([]models.Account, error)
	FindOneByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	UpdateCartByEmail(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
}

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Accounts AccountStore
	Orders   OrderStore

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// OpenPostgres connects, applies migrations and wires the outbox into order writes.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := migrations.Up(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	accounts := &AccountsPG{DB: pool}
	return &Store{
		Accounts: accounts,
		Orders:   &OrdersPG{DB: pool, Outbox: &OutboxPG{}},
		ping:     accounts.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func OpenMongo(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		Accounts: &AccountsMongo{Coll: db.Collection(accountsCollection)},
		Orders:   &OrdersMongo{Coll: db.Collection(ordersCollection)},
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(accountsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("accounts indexes: %w", err)
	}
	_, err = db.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("orders indexes: %w", err)
	}
	return nil
}
