package model

import (
	"time"

	"deskhub/shared/model"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID            = "id"
	FieldBookingID     = "booking_id"
	FieldAmount        = "amount"
	FieldMethod        = "method"
	FieldStatus        = "status"
	FieldReferenceCode = "reference_code"
	FieldPaidAt        = "paid_at"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

const (
	MethodCash     = "CASH"
	MethodTransfer = "TRANSFER"
	MethodCard     = "CARD"
)

type Payment struct {
	ID            string     `db:"id"`
	BookingID     string     `db:"booking_id"`
	Amount        float64    `db:"amount"`
	Method        string     `db:"method"`
	Status        Status     `db:"status"`
	ReferenceCode string     `db:"reference_code"`
	PaidAt        *time.Time `db:"paid_at"`
	model.Metadata
}
