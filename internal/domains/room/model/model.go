package model

import (
	"deskhub/internal/domains/booking/schedule"
	"deskhub/shared/model"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID             = "id"
	FieldName           = "name"
	FieldLocation       = "location"
	FieldCapacity       = "capacity"
	FieldOperatingStart = "operating_start"
	FieldOperatingEnd   = "operating_end"
	FieldPricePerHour   = "price_per_hour"
	FieldImage          = "image"
	FieldActive         = "active"
	FieldStatus         = "status"
)

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusMaintenance Status = "MAINTENANCE"
	StatusUnavailable Status = "UNAVAILABLE"
)

type Room struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Location       string         `db:"location"`
	Capacity       int            `db:"capacity"`
	OperatingStart schedule.Clock `db:"operating_start"`
	OperatingEnd   schedule.Clock `db:"operating_end"`
	PricePerHour   float64        `db:"price_per_hour"`
	Image          string         `db:"image"`
	Active         bool           `db:"active"`
	Status         Status         `db:"status"`
	model.Metadata
}

// Bookable reports whether the room currently accepts new bookings.
func (r Room) Bookable() bool {
	return r.Active && r.Status == StatusAvailable
}

// OperatingHours is the window bookings must fall inside.
func (r Room) OperatingHours() schedule.Interval {
	return schedule.Interval{Start: r.OperatingStart, End: r.OperatingEnd}
}

// Price is the amount due for a booking of the given length.
func (r Room) Price(hours float64) float64 {
	return r.PricePerHour * hours
}
