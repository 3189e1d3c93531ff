package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"booking_ref",
			"user_id",
			"amount",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"booking_ref": bson.M{
				"bsonType": "string",
			},

			"user_id": bson.M{
				"bsonType": "string",
			},

			"xendit_invoice_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"invoice_url": bson.M{
				"bsonType": "string",
			},

			"amount": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"exclusiveMinimum": 0,
			},

			"paid_amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"payment_method": bson.M{
				"bsonType": "string",
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"PAID",
					"FAILED",
				},
			},

			"transaction_date": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
