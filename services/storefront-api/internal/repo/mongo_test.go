package repo

import (
	"context"
	"testing"
	"time"

	"ecommerce-storefront/shared/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	accountsNS = "storefront.accounts"
	ordersNS   = "storefront.orders"
)

var mongoNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func accountBSON(id, email string, cart bson.A) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "firstname", Value: "Ada"},
		{Key: "lastname", Value: "Lovelace"},
		{Key: "email", Value: email},
		{Key: "phone_number", Value: "+44"},
		{Key: "password", Value: "hash"},
		{Key: "address", Value: "12 St James's Square"},
		{Key: "cart", Value: cart},
		{Key: "created_at", Value: mongoNow},
		{Key: "updated_at", Value: mongoNow},
	}
}

// sortOf returns the created_at direction of the first command sent.
func sortOf(mt *mtest.T) int64 {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	sort, err := evt.Command.LookupErr("sort")
	require.NoError(mt, err, "command %s has no sort", evt.CommandName)
	return sort.Document().Lookup("created_at").AsInt64()
}

func TestAccountsMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by email sorts by created_at", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, accountsNS, mtest.FirstBatch,
			accountBSON("id-1", "ada@example.com", bson.A{}),
			accountBSON("id-2", "ada@example.com", bson.A{bson.D{{Key: "sku", Value: "A-1"}}}),
		))

		got, err := r.FindByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "id-1", got[0].ID)
		assert.Equal(mt, []models.LineItem{}, got[0].Cart)
		assert.Equal(mt, "A-1", got[1].Cart[0]["sku"])
		assert.True(mt, mongoNow.Equal(got[0].CreatedAt))
		assert.Equal(mt, int64(1), sortOf(mt))
	})

	mt.Run("find by email with no match is empty", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, accountsNS, mtest.FirstBatch))

		got, err := r.FindByEmail(context.Background(), "ghost@example.com")
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("list wraps command errors", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))

		_, err := r.List(context.Background())
		assert.ErrorContains(mt, err, "find accounts")
		assert.NotErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find one returns the oldest match", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, accountsNS, mtest.FirstBatch,
			accountBSON("id-1", "ada@example.com", bson.A{}),
		))

		got, err := r.FindOneByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "id-1", got.ID)
		assert.Equal(mt, "hash", got.Password)
		assert.Equal(mt, int64(1), sortOf(mt))
	})

	mt.Run("find one without documents is not found", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, accountsNS, mtest.FirstBatch))

		_, err := r.FindOneByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create inserts with a fresh id", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := r.Create(context.Background(), validAccount())
		require.NoError(mt, err)
		assert.NotEmpty(mt, got.ID)
		assert.Equal(mt, []models.LineItem{}, got.Cart)
		assert.Equal(mt, got.CreatedAt, got.UpdatedAt)
		assert.Equal(mt, "insert", mt.GetStartedEvent().CommandName)
	})

	mt.Run("create rejects bad shape before writing", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		a := validAccount()
		a.Email = ""

		_, err := r.Create(context.Background(), a)
		require.ErrorIs(mt, err, ErrValidation)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("update cart returns the updated document", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: accountBSON("id-1", "ada@example.com", bson.A{bson.D{{Key: "sku", Value: "B-2"}}}),
		}))

		got, err := r.UpdateCartByEmail(context.Background(), "ada@example.com", []models.LineItem{{"sku": "B-2"}})
		require.NoError(mt, err)
		assert.Equal(mt, "B-2", got.Cart[0]["sku"])

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.True(mt, evt.Command.Lookup("new").Boolean())
		assert.Equal(mt, int64(1), evt.Command.Lookup("sort", "created_at").AsInt64())
		assert.Equal(mt, "ada@example.com", evt.Command.Lookup("query", "email").StringValue())
	})

	mt.Run("update cart of unknown email is not found", func(mt *mtest.T) {
		r := &AccountsMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := r.UpdateCartByEmail(context.Background(), "ghost@example.com", nil)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestOrdersMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create inserts with a fresh id", func(mt *mtest.T) {
		r := &OrdersMongo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := r.Create(context.Background(), validOrder())
		require.NoError(mt, err)
		assert.NotEmpty(mt, got.ID)
		assert.False(mt, got.CreatedAt.IsZero())
		assert.Equal(mt, "insert", mt.GetStartedEvent().CommandName)
	})

	mt.Run("create rejects missing items", func(mt *mtest.T) {
		r := &OrdersMongo{Coll: mt.Coll}
		o := validOrder()
		o.Orders = nil

		_, err := r.Create(context.Background(), o)
		assert.ErrorIs(mt, err, ErrValidation)
	})

	mt.Run("list keeps exact totals in created order", func(mt *mtest.T) {
		r := &OrdersMongo{Coll: mt.Coll}
		total, err := primitive.ParseDecimal128("19.990000000000000001")
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "o-1"},
			{Key: "firstname", Value: "Ada"},
			{Key: "lastname", Value: "Lovelace"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "phone_number", Value: "+44"},
			{Key: "address", Value: "12 St James's Square"},
			{Key: "orders", Value: bson.A{bson.D{{Key: "sku", Value: "A-1"}}}},
			{Key: "total_amount", Value: total},
			{Key: "created_at", Value: mongoNow},
		}))

		got, err := r.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "o-1", got[0].ID)
		assert.Equal(mt, "19.990000000000000001", got[0].TotalAmount.String())
		assert.Equal(mt, "A-1", got[0].Orders[0]["sku"])
		assert.Equal(mt, int64(1), sortOf(mt))
	})
}
