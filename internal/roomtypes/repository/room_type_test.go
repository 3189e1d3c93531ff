package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPriceFilter(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     bson.M
	}{
		{"open", 0, 0, bson.M{}},
		{"floor", 1500, 0, bson.M{"price_per_night": bson.M{"$gte": 1500.0}}},
		{"ceiling", 0, 3000, bson.M{"price_per_night": bson.M{"$lte": 3000.0}}},
		{"range", 1500, 3000, bson.M{"price_per_night": bson.M{"$gte": 1500.0, "$lte": 3000.0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, priceFilter(tt.min, tt.max))
		})
	}
}

func TestPropertyFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, propertyFilter(""))
	assert.Equal(t, bson.M{"property_id": "p1"}, propertyFilter("p1"))
}
