package service

import (
	"context"

	"deskhub/internal/domains/booking/model"
	"deskhub/shared/constant"
	"deskhub/shared/failure"
)

const guestActor = "guest"

// caller is the identity the auth middleware attached to the request, empty for anonymous guests.
type caller struct {
	ID    string
	Email string
	Role  string
}

func callerFrom(ctx context.Context) caller {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return caller{ID: id, Email: email, Role: role}
}

func (c caller) admin() bool {
	return c.Role == constant.RoleAdmin || c.Role == constant.RoleSuperAdmin
}

func (c caller) member() bool {
	return c.ID != "" && !c.admin()
}

func (c caller) actor() string {
	if c.ID == "" {
		return guestActor
	}

	return c.ID
}

// booker decides which variant a new booking is recorded under. Admins book on behalf of guests.
func (c caller) booker(contactEmail string) (model.BookerVariant, string) {
	if c.member() {
		return model.BookerMember, c.ID
	}

	return model.BookerGuest, contactEmail
}

func (c caller) owns(booking model.Booking) bool {
	return booking.BookerVariant == model.BookerMember && booking.BookerRef == c.ID
}

// authorize lets admins through and members only on their own bookings.
func (c caller) authorize(booking model.Booking) error {
	if c.admin() || (c.member() && c.owns(booking)) {
		return nil
	}

	return failure.ResourceRestrictedError
}
