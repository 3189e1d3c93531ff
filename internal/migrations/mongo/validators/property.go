package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"property_type",
			"address",
			"status",
			"submission_date",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},

			"property_type": bson.M{
				"enum": []string{"HOTEL", "RESORT", "APARTMENT", "GUESTHOUSE"},
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 5,
				"maxLength": 300,
			},

			"amenities": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items":    bson.M{"bsonType": "string"},
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"status": bson.M{
				"enum": []string{"PENDING", "PUBLISHED", "REJECTED"},
			},

			"rejection_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"submission_date": bson.M{
				"bsonType": "date",
			},

			"reviewed_date": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
