package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingsrepo "skybridge/internal/bookings/repository"
	paymentsrepo "skybridge/internal/payments/repository"
	propertiesrepo "skybridge/internal/properties/repository"
	roomtypesrepo "skybridge/internal/roomtypes/repository"
)

func TestCollections_MatchRepositories(t *testing.T) {
	cols := Collections()

	for _, name := range []string{
		propertiesrepo.CollectionName,
		roomtypesrepo.CollectionName,
		bookingsrepo.CollectionName,
		bookingsrepo.InventoryLockCollection,
		paymentsrepo.CollectionName,
	} {
		_, ok := cols[name]
		assert.True(t, ok, "missing collection %s", name)
	}
	assert.Len(t, cols, 5)
}

func uniqueKeys(models []mongo.IndexModel) []string {
	var keys []string
	for _, m := range models {
		if m.Options == nil || m.Options.Unique == nil || !*m.Options.Unique {
			continue
		}
		for _, e := range m.Keys.(bson.D) {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func TestIndexes_Unique(t *testing.T) {
	assert.Equal(t, []string{"booking_ref"}, uniqueKeys(BookingsIndexes))
	assert.ElementsMatch(t, []string{"xendit_invoice_id", "booking_id"}, uniqueKeys(PaymentsIndexes))
	assert.Empty(t, uniqueKeys(RoomTypesIndexes))
	assert.Empty(t, uniqueKeys(PropertiesIndexes))
}

func TestIndexes_InvoiceIDIsSparse(t *testing.T) {
	// payments are reserved before the provider returns an invoice id
	for _, m := range PaymentsIndexes {
		if m.Keys.(bson.D)[0].Key != "xendit_invoice_id" {
			continue
		}
		require.NotNil(t, m.Options.Sparse)
		assert.True(t, *m.Options.Sparse)
		return
	}
	t.Fatal("xendit_invoice_id index not found")
}

func TestIndexes_OverlapQueryPrefix(t *testing.T) {
	require.NotEmpty(t, BookingsIndexes)
	keys := BookingsIndexes[0].Keys.(bson.D)

	require.Len(t, keys, 3)
	assert.Equal(t, "room_type_id", keys[0].Key)
	assert.Equal(t, "check_in_date", keys[1].Key)
	assert.Equal(t, "check_out_date", keys[2].Key)
}

func TestValidators_StatusEnums(t *testing.T) {
	enum := func(v bson.M, field string) []string {
		props := v["$jsonSchema"].(bson.M)["properties"].(bson.M)
		return props[field].(bson.M)["enum"].([]string)
	}

	cols := Collections()
	assert.Equal(t, []string{"PENDING", "CONFIRMED", "CANCELLED"}, enum(cols[BookingsCollection].Validator, "booking_status"))
	assert.Equal(t, []string{"PENDING", "PAID", "FAILED"}, enum(cols[PaymentsCollection].Validator, "payment_status"))
	assert.Equal(t, []string{"PENDING", "PUBLISHED", "REJECTED"}, enum(cols[PropertiesCollection].Validator, "status"))
	assert.Nil(t, cols[InventoryLocksCollection].Validator)
}
