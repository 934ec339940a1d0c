package router

import (
	"deskhub/internal/handlers/booking"
	"deskhub/internal/handlers/room"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Room    room.Handler
	Booking booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Route("/rooms", func(rooms chi.Router) {
			r.DomainHandlers.Room.Router(rooms)
			r.DomainHandlers.Booking.RoomRouter(rooms)
		})
		r.DomainHandlers.Booking.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
