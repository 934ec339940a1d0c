package lifecycle_test

import (
	"testing"

	"deskhub/internal/domains/booking/lifecycle"
	"deskhub/internal/domains/booking/model"
	"deskhub/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestInitial(t *testing.T) {
	status, effect := lifecycle.Initial()

	assert.Equal(t, model.StatusPending, status)
	assert.Equal(t, lifecycle.EffectCreatePayment, effect)
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    model.Status
		to      model.Status
		effect  lifecycle.Effect
		errKind failure.Kind
	}{
		{name: "confirm pending", from: model.StatusPending, to: model.StatusConfirmed, effect: lifecycle.EffectNone},
		{name: "cancel pending voids payment", from: model.StatusPending, to: model.StatusCancelled, effect: lifecycle.EffectVoidPayment},
		{name: "cancel confirmed voids payment", from: model.StatusConfirmed, to: model.StatusCancelled, effect: lifecycle.EffectVoidPayment},
		{name: "complete pending", from: model.StatusPending, to: model.StatusCompleted, effect: lifecycle.EffectNone},
		{name: "complete confirmed", from: model.StatusConfirmed, to: model.StatusCompleted, effect: lifecycle.EffectNone},
		{name: "no show pending", from: model.StatusPending, to: model.StatusNoShow, effect: lifecycle.EffectNone},
		{name: "no show confirmed", from: model.StatusConfirmed, to: model.StatusNoShow, effect: lifecycle.EffectNone},
		{name: "cancel twice", from: model.StatusCancelled, to: model.StatusCancelled, errKind: failure.KindAlreadyCancelled},
		{name: "revive cancelled", from: model.StatusCancelled, to: model.StatusConfirmed, errKind: failure.KindConflict},
		{name: "cancel completed", from: model.StatusCompleted, to: model.StatusCancelled, errKind: failure.KindConflict},
		{name: "reopen no show", from: model.StatusNoShow, to: model.StatusPending, errKind: failure.KindConflict},
		{name: "back to pending", from: model.StatusConfirmed, to: model.StatusPending, errKind: failure.KindConflict},
		{name: "unknown target", from: model.StatusPending, to: model.Status("ARCHIVED"), errKind: failure.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect, err := lifecycle.Transition(tt.from, tt.to)

			if tt.errKind != failure.KindUnknown {
				assert.True(t, failure.IsKind(err, tt.errKind), "got %v", err)
				assert.False(t, lifecycle.CanTransition(tt.from, tt.to))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.effect, effect)
			assert.True(t, lifecycle.CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, lifecycle.Terminal(model.StatusPending))
	assert.False(t, lifecycle.Terminal(model.StatusConfirmed))
	assert.True(t, lifecycle.Terminal(model.StatusCancelled))
	assert.True(t, lifecycle.Terminal(model.StatusCompleted))
	assert.True(t, lifecycle.Terminal(model.StatusNoShow))
}

func TestEffect_String(t *testing.T) {
	assert.Equal(t, "void_payment", lifecycle.EffectVoidPayment.String())
	assert.Equal(t, "create_payment", lifecycle.EffectCreatePayment.String())
	assert.Equal(t, "none", lifecycle.EffectNone.String())
}
