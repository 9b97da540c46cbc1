package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce-storefront/shared/pkg/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const accountsCollection = "accounts"

type accountDoc struct {
	ID          string            `bson:"_id"`
	Firstname   string            `bson:"firstname"`
	Lastname    string            `bson:"lastname"`
	Email       string            `bson:"email"`
	PhoneNumber string            `bson:"phone_number"`
	Password    string            `bson:"password"`
	Address     string            `bson:"address"`
	Cart        []models.LineItem `bson:"cart"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
}

func toAccountDoc(a *models.Account) accountDoc {
	cart := a.Cart
	if cart == nil {
		cart = []models.LineItem{}
	}
	return accountDoc{
		ID:          a.ID,
		Firstname:   a.Firstname,
		Lastname:    a.Lastname,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		Password:    a.Password,
		Address:     a.Address,
		Cart:        cart,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (d accountDoc) model() models.Account {
	cart := d.Cart
	if cart == nil {
		cart = []models.LineItem{}
	}
	return models.Account{
		ID:          d.ID,
		Firstname:   d.Firstname,
		Lastname:    d.Lastname,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		Password:    d.Password,
		Address:     d.Address,
		Cart:        cart,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// AccountsMongo keeps accounts as documents. Ids are uuid strings so both
// backends hand out the same id format.
type AccountsMongo struct {
	Coll *mongo.Collection
}

func (r *AccountsMongo) List(ctx context.Context) ([]models.Account, error) {
	return r.find(ctx, bson.D{})
}

func (r *AccountsMongo) FindByEmail(ctx context.Context, email string) ([]models.Account, error) {
	return r.find(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *AccountsMongo) find(ctx context.Context, filter bson.D) ([]models.Account, error) {
	cur, err := r.Coll.Find(ctx, filter, options.Find().SetSort(byCreatedAt))
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	out := make([]models.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *AccountsMongo) FindOneByEmail(ctx context.Context, email string) (*models.Account, error) {
	var d accountDoc
	err := r.Coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}, options.FindOne().SetSort(byCreatedAt)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	a := d.model()
	return &a, nil
}

func (r *AccountsMongo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a.Cart == nil {
		a.Cart = []models.LineItem{}
	}
	if err := checkShape(a); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	out := *a
	out.ID = uuid.NewString()
	out.CreatedAt = now
	out.UpdatedAt = now

	if _, err := r.Coll.InsertOne(ctx, toAccountDoc(&out)); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &out, nil
}

func (r *AccountsMongo) UpdateCartByEmail(ctx context.Context, email string, cart []models.LineItem) (*models.Account, error) {
	if cart == nil {
		cart = []models.LineItem{}
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "cart", Value: cart},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().
		SetSort(byCreatedAt).
		SetReturnDocument(options.After)

	var d accountDoc
	err := r.Coll.FindOneAndUpdate(ctx, bson.D{{Key: "email", Value: email}}, update, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update cart: %w", err)
	}
	a := d.model()
	return &a, nil
}

var byCreatedAt = bson.D{{Key: "created_at", Value: 1}}
