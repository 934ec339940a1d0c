// Package lifecycle holds the booking status machine and the payment side effect of every move.
package lifecycle

import (
	"fmt"

	"deskhub/internal/domains/booking/model"
	"deskhub/shared/failure"
)

// Effect is the payment mutation a transition requires.
type Effect int

const (
	EffectNone Effect = iota
	EffectCreatePayment
	EffectVoidPayment
)

func (e Effect) String() string {
	switch e {
	case EffectCreatePayment:
		return "create_payment"
	case EffectVoidPayment:
		return "void_payment"
	default:
		return "none"
	}
}

var transitions = map[model.Status]map[model.Status]Effect{
	model.StatusPending: {
		model.StatusConfirmed: EffectNone,
		model.StatusCancelled: EffectVoidPayment,
		model.StatusCompleted: EffectNone,
		model.StatusNoShow:    EffectNone,
	},
	model.StatusConfirmed: {
		model.StatusCancelled: EffectVoidPayment,
		model.StatusCompleted: EffectNone,
		model.StatusNoShow:    EffectNone,
	},
}

// Initial is the status and effect of a freshly created booking.
func Initial() (model.Status, Effect) {
	return model.StatusPending, EffectCreatePayment
}

// Transition validates a status move and returns its payment effect.
func Transition(from, to model.Status) (Effect, error) {
	if !to.Valid() {
		return EffectNone, failure.Validation(fmt.Sprintf("unknown booking status %q", to)) // nolint:wrapcheck
	}

	if from == model.StatusCancelled && to == model.StatusCancelled {
		return EffectNone, failure.AlreadyCancelled("booking is already cancelled") // nolint:wrapcheck
	}

	effect, ok := transitions[from][to]
	if !ok {
		return EffectNone, failure.Conflict( // nolint:wrapcheck
			fmt.Sprintf("booking cannot move from %s to %s", from, to))
	}

	return effect, nil
}

// CanTransition reports whether Transition would succeed.
func CanTransition(from, to model.Status) bool {
	_, err := Transition(from, to)

	return err == nil
}

// Terminal reports whether no further status change is possible.
func Terminal(status model.Status) bool {
	return len(transitions[status]) == 0
}
