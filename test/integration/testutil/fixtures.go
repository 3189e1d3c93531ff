package testutil

import (
	"time"

	"skybridge/pkg/auth"
	"skybridge/pkg/model"
)

const DateLayout = "2006-01-02"

var (
	Owner    = Caller{UserID: "owner-1", Role: auth.RoleHotelOwner, Email: "owner1@example.com"}
	Rival    = Caller{UserID: "owner-2", Role: auth.RoleHotelOwner, Email: "owner2@example.com"}
	Admin    = Caller{UserID: "admin-1", Role: auth.RoleAdmin}
	Guest    = Caller{UserID: "guest-1", Role: auth.RoleCustomer, Email: "guest1@example.com"}
	Stranger = Caller{UserID: "guest-2", Role: auth.RoleCustomer, Email: "guest2@example.com"}
)

type PropertyBuilder struct {
	p model.Property
}

func NewPropertyBuilder() *PropertyBuilder {
	return &PropertyBuilder{
		p: model.Property{
			Name:         "Cebu Seaside Resort",
			Description:  "Beachfront resort in Cordova",
			PropertyType: model.PropertyTypeResort,
			Address:      "Barangay Day-as, Buyong Road",
			ContactEmail: "reservations@cebuseaside.com",
			Amenities:    []string{"Free WiFi", "Swimming Pool"},
			Images:       []string{},
		},
	}
}

func (b *PropertyBuilder) WithName(name string) *PropertyBuilder {
	b.p.Name = name
	return b
}

func (b *PropertyBuilder) WithType(propertyType string) *PropertyBuilder {
	b.p.PropertyType = propertyType
	return b
}

func (b *PropertyBuilder) WithAmenities(amenities ...string) *PropertyBuilder {
	b.p.Amenities = amenities
	return b
}

func (b *PropertyBuilder) Build() model.Property {
	return b.p
}

type RoomTypeBuilder struct {
	rt model.RoomType
}

func NewRoomTypeBuilder() *RoomTypeBuilder {
	return &RoomTypeBuilder{
		rt: model.RoomType{
			Name:           "Deluxe King",
			Description:    "Sea view, king bed",
			PricePerNight:  99.99,
			AvailableRooms: 2,
			MaxAdults:      2,
			MaxChildren:    1,
		},
	}
}

func (b *RoomTypeBuilder) WithProperty(id string) *RoomTypeBuilder {
	b.rt.PropertyID = id
	return b
}

func (b *RoomTypeBuilder) WithRooms(n int) *RoomTypeBuilder {
	b.rt.AvailableRooms = n
	return b
}

func (b *RoomTypeBuilder) WithPrice(price float64) *RoomTypeBuilder {
	b.rt.PricePerNight = price
	return b
}

func (b *RoomTypeBuilder) Build() model.RoomType {
	return b.rt
}

// Stay returns check-in and check-out dates offset from today.
func Stay(fromDays, nights int) (string, string) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	in := today.AddDate(0, 0, fromDays)
	return in.Format(DateLayout), in.AddDate(0, 0, nights).Format(DateLayout)
}

func BookingRequest(rt *model.RoomType, checkIn, checkOut string) model.BookingRequest {
	return model.BookingRequest{
		PropertyID:   rt.PropertyID,
		RoomTypeID:   rt.ID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Adults:       2,
	}
}
