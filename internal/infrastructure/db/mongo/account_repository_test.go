package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

func accountBSON(id primitive.ObjectID, first, email string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "firstname", Value: first},
		{Key: "lastname", Value: "Doe"},
		{Key: "email", Value: email},
	}
}

func TestCollectionFor(t *testing.T) {
	assert.Equal(t, "customers", CollectionFor(domain.KindCustomer))
	assert.Equal(t, "staffs", CollectionFor(domain.KindStaff))
}

func TestAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert assigns id", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := repo.Insert(t.Context(), &domain.Account{
			Firstname: "Jane", Lastname: "Doe", Email: "jane@x.com", PasswordHash: "hash",
		})
		require.NoError(mt, err)
		assert.Len(mt, created.ID, 24)
		assert.Equal(mt, "hash", created.PasswordHash)
	})

	mt.Run("insert duplicate email", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: customers index: email_unique",
		}))

		_, err := repo.Insert(t.Context(), &domain.Account{Email: "jane@x.com"})
		assert.ErrorIs(mt, err, domain.ErrAccountExists)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindStaff)
		id := primitive.NewObjectID()
		doc := append(accountBSON(id, "Jane", "jane@x.com"), bson.E{Key: "password", Value: "hash"})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.staffs", mtest.FirstBatch, doc))

		got, err := repo.FindByEmail(t.Context(), "jane@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Equal(mt, "hash", got.PasswordHash)
	})

	mt.Run("find by email missing", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindStaff)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.staffs", mtest.FirstBatch))

		_, err := repo.FindByEmail(t.Context(), "ghost@x.com")
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)

		_, err := repo.FindByID(t.Context(), "not-an-object-id")
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.customers", mtest.FirstBatch,
			accountBSON(primitive.NewObjectID(), "Alice", "alice@x.com"),
			accountBSON(primitive.NewObjectID(), "Jane", "jane@x.com"),
		))

		list, err := repo.List(t.Context())
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "Alice", list[0].Firstname)
		assert.Empty(mt, list[0].PasswordHash)
	})

	mt.Run("update returns new document", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: accountBSON(id, "Janet", "janet@x.com")},
		))

		got, err := repo.UpdateFields(t.Context(), id.Hex(), domain.ProfileUpdate{
			Firstname: "Janet", Lastname: "Doe", Email: "janet@x.com",
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Janet", got.Firstname)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateFields(t.Context(), primitive.NewObjectID().Hex(), domain.ProfileUpdate{})
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})

	mt.Run("delete returns removed document", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: accountBSON(id, "Jane", "jane@x.com")},
		))

		got, err := repo.DeleteByID(t.Context(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB, domain.KindCustomer)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.DeleteByID(t.Context(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})

	mt.Run("insert audit event", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertEvent(t.Context(), &domain.AccountEvent{
			ID: "evt-1", AccountID: "abc", Kind: domain.KindCustomer, Type: domain.EventRegistered,
		})
		assert.NoError(mt, err)
	})
}
