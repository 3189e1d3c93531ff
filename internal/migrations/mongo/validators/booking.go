package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_ref",
			"user_id",
			"property_id",
			"room_type_id",
			"check_in_date",
			"check_out_date",
			"number_of_nights",
			"adults",
			"subtotal",
			"taxes_and_fees",
			"total_amount",
			"booking_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_ref": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-Z]{2,5}-[A-Z0-9]{6}$",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"guest_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"room_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"check_in_date": bson.M{
				"bsonType": "date",
			},

			"check_out_date": bson.M{
				"bsonType": "date",
			},

			"number_of_nights": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"adults": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  10,
			},

			"children": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  10,
			},

			"subtotal": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"taxes_and_fees": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"total_amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"booking_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"CANCELLED",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
