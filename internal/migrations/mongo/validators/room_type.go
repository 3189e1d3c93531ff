package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"property_id",
			"name",
			"price_per_night",
			"available_rooms",
			"max_adults",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"owner_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"price_per_night": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"exclusiveMinimum": 0,
			},

			"available_rooms": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1000,
			},

			"max_adults": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  10,
			},

			"max_children": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  10,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
