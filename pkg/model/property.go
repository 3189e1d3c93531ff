package model

import "time"

type PropertyStatus string

const (
	PropertyPending   PropertyStatus = "PENDING"
	PropertyPublished PropertyStatus = "PUBLISHED"
	PropertyRejected  PropertyStatus = "REJECTED"
)

func ParsePropertyStatus(s string) (PropertyStatus, bool) {
	switch st := PropertyStatus(s); st {
	case PropertyPending, PropertyPublished, PropertyRejected:
		return st, true
	}
	return "", false
}

const (
	PropertyTypeHotel      = "HOTEL"
	PropertyTypeResort     = "RESORT"
	PropertyTypeApartment  = "APARTMENT"
	PropertyTypeGuesthouse = "GUESTHOUSE"
)

// Property is a listing submitted by a hotel owner. Only PUBLISHED
// properties show up in search and accept bookings.
type Property struct {
	ID              string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID         string         `json:"owner_id" bson:"owner_id"`
	OwnerEmail      string         `json:"owner_email,omitempty" bson:"owner_email,omitempty"`
	Name            string         `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Description     string         `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=5000"`
	PropertyType    string         `json:"property_type" bson:"property_type" validate:"required,oneof=HOTEL RESORT APARTMENT GUESTHOUSE"`
	Address         string         `json:"address" bson:"address" validate:"required,min=5,max=300"`
	City            string         `json:"city" bson:"city"`
	Latitude        float64        `json:"latitude,omitempty" bson:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       float64        `json:"longitude,omitempty" bson:"longitude,omitempty" validate:"omitempty,longitude"`
	ContactEmail    string         `json:"contact_email,omitempty" bson:"contact_email,omitempty" validate:"omitempty,email"`
	Amenities       []string       `json:"amenities" bson:"amenities" validate:"max=50,dive,min=2,max=50"`
	Images          []string       `json:"images" bson:"images" validate:"max=20,dive,url"`
	CheckInTime     string         `json:"check_in_time,omitempty" bson:"check_in_time,omitempty" validate:"omitempty,max=20"`
	CheckOutTime    string         `json:"check_out_time,omitempty" bson:"check_out_time,omitempty" validate:"omitempty,max=20"`
	Status          PropertyStatus `json:"status" bson:"status"`
	SubmissionDate  time.Time      `json:"submission_date" bson:"submission_date"`
	ReviewedDate    *time.Time     `json:"reviewed_date,omitempty" bson:"reviewed_date,omitempty"`
	ReviewedByID    string         `json:"reviewed_by_id,omitempty" bson:"reviewed_by_id,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
}

func (p *Property) IsPublished() bool {
	return p.Status == PropertyPublished
}

// PropertyDetail is a property with its room types.
type PropertyDetail struct {
	*Property
	RoomTypes []*RoomType `json:"room_types"`
}

// PropertySearch filters published properties. A price bound matches a
// property when at least one of its room types falls inside it.
type PropertySearch struct {
	PropertyType string
	Amenities    []string
	MinPrice     float64
	MaxPrice     float64
}

func (q PropertySearch) HasPriceFilter() bool {
	return q.MinPrice > 0 || q.MaxPrice > 0
}

type PropertyRejection struct {
	RejectionReason string `json:"rejection_reason" validate:"max=1000"`
}
