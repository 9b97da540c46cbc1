package repo

import (
	"context"
	"fmt"
	"time"

	"ecommerce-storefront/shared/pkg/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

type orderDoc struct {
	ID          string               `bson:"_id"`
	Firstname   string               `bson:"firstname"`
	Lastname    string               `bson:"lastname"`
	Email       string               `bson:"email"`
	PhoneNumber string               `bson:"phone_number"`
	Address     string               `bson:"address"`
	Orders      []models.LineItem    `bson:"orders"`
	TotalAmount primitive.Decimal128 `bson:"total_amount"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func toOrderDoc(o *models.Order) (orderDoc, error) {
	total, err := primitive.ParseDecimal128(o.TotalAmount.String())
	if err != nil {
		return orderDoc{}, fmt.Errorf("encode total amount: %w", err)
	}
	return orderDoc{
		ID:          o.ID,
		Firstname:   o.Firstname,
		Lastname:    o.Lastname,
		Email:       o.Email,
		PhoneNumber: o.PhoneNumber,
		Address:     o.Address,
		Orders:      o.Orders,
		TotalAmount: total,
		CreatedAt:   o.CreatedAt,
	}, nil
}

func (d orderDoc) model() (models.Order, error) {
	total, err := models.NewAmount(d.TotalAmount.String())
	if err != nil {
		return models.Order{}, fmt.Errorf("decode total amount: %w", err)
	}
	items := d.Orders
	if items == nil {
		items = []models.LineItem{}
	}
	return models.Order{
		ID:          d.ID,
		Firstname:   d.Firstname,
		Lastname:    d.Lastname,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		Address:     d.Address,
		Orders:      items,
		TotalAmount: total,
		CreatedAt:   d.CreatedAt.UTC(),
	}, nil
}

// OrdersMongo does not emit orders.created events; the outbox lives in Postgres.
type OrdersMongo struct {
	Coll *mongo.Collection
}

func (r *OrdersMongo) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if err := checkShape(o); err != nil {
		return nil, err
	}
	out := *o
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	doc, err := toOrderDoc(&out)
	if err != nil {
		return nil, err
	}
	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &out, nil
}

func (r *OrdersMongo) List(ctx context.Context) ([]models.Order, error) {
	cur, err := r.Coll.Find(ctx, bson.D{}, options.Find().SetSort(byCreatedAt))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
