package model

import "time"

type RoomType struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID     string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	OwnerID        string    `json:"owner_id" bson:"owner_id"`
	Name           string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	PricePerNight  float64   `json:"price_per_night" bson:"price_per_night" validate:"required,gt=0"`
	AvailableRooms int       `json:"available_rooms" bson:"available_rooms" validate:"required,min=1,max=1000"`
	MaxAdults      int       `json:"max_adults" bson:"max_adults" validate:"required,min=1,max=10"`
	MaxChildren    int       `json:"max_children" bson:"max_children" validate:"min=0,max=10"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// Fits reports whether a party of the given size fits the room type.
func (rt *RoomType) Fits(adults, children int) bool {
	return adults <= rt.MaxAdults && children <= rt.MaxChildren
}
