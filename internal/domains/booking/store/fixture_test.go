package store_test

import (
	"context"
	"runtime"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	otelMocks "deskhub/infras/otel/mocks"
	"deskhub/infras/postgres"
	postgresMocks "deskhub/infras/postgres/mocks"
	bookingMocks "deskhub/internal/domains/booking/mocks"
	"deskhub/internal/domains/booking/model"
	"deskhub/internal/domains/booking/schedule"
	"deskhub/internal/domains/booking/store"
	paymentMocks "deskhub/internal/domains/payment/mocks"
	paymentModel "deskhub/internal/domains/payment/model"
	roomMocks "deskhub/internal/domains/room/mocks"
	roomModel "deskhub/internal/domains/room/model"
	"deskhub/shared/constant"
	gDto "deskhub/shared/dto"
	"deskhub/shared/timezone"

	"github.com/jmoiron/sqlx"
	"go.uber.org/mock/gomock"
)

// memoryDB backs the repository mocks. mu only guards the maps: transactions interleave
// freely and are isolated only by the keys they lock, as with Postgres advisory and row locks.
type memoryDB struct {
	mu       sync.Mutex
	rooms    map[string]roomModel.Room
	bookings map[string]model.Booking
	payments map[string]paymentModel.Payment

	locks sync.Map

	failPaymentInsert bool
}

// memoryTx holds the keys a transaction locked and the undo log replayed on rollback.
type memoryTx struct {
	db   *memoryDB
	held map[string]*sync.Mutex
	undo []func()
}

type txKey struct{}

func txOf(ctx context.Context) *memoryTx {
	tx, _ := ctx.Value(txKey{}).(*memoryTx)

	return tx
}

// lock takes keys in sorted order and keeps them until the transaction ends.
func (tx *memoryTx) lock(keys ...string) {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)

	for _, key := range slices.Compact(ordered) {
		if _, ok := tx.held[key]; ok {
			continue
		}

		value, _ := tx.db.locks.LoadOrStore(key, &sync.Mutex{})
		mu, _ := value.(*sync.Mutex)
		mu.Lock()
		tx.held[key] = mu
	}
}

func (tx *memoryTx) finish(commit bool) {
	if !commit {
		tx.db.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		tx.db.mu.Unlock()
	}

	for _, mu := range tx.held {
		mu.Unlock()
	}
}

func (tx *memoryTx) putBooking(booking model.Booking) {
	db := tx.db
	db.mu.Lock()
	defer db.mu.Unlock()

	previous, existed := db.bookings[booking.ID]
	tx.undo = append(tx.undo, func() {
		if existed {
			db.bookings[booking.ID] = previous
		} else {
			delete(db.bookings, booking.ID)
		}
	})

	db.bookings[booking.ID] = booking
}

func (tx *memoryTx) putPayment(id string, payment *paymentModel.Payment) {
	db := tx.db
	db.mu.Lock()
	defer db.mu.Unlock()

	previous, existed := db.payments[id]
	tx.undo = append(tx.undo, func() {
		if existed {
			db.payments[id] = previous
		} else {
			delete(db.payments, id)
		}
	})

	if payment == nil {
		delete(db.payments, id)

		return
	}

	db.payments[id] = *payment
}

type fixture struct {
	store store.Store
	db    *memoryDB
	day   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	db := &memoryDB{
		rooms:    map[string]roomModel.Room{},
		bookings: map[string]model.Booking{},
		payments: map[string]paymentModel.Payment{},
	}

	db.rooms["falcon"] = roomModel.Room{
		ID:             "falcon",
		Name:           "Falcon",
		Capacity:       6,
		OperatingStart: schedule.MustClock("09:00"),
		OperatingEnd:   schedule.MustClock("18:00"),
		PricePerHour:   100000,
		Active:         true,
		Status:         roomModel.StatusAvailable,
	}

	transactor := postgresMocks.NewMockTransactor(ctrl)
	bookingRepo := bookingMocks.NewMockBooking(ctrl)
	paymentRepo := paymentMocks.NewMockPayment(ctrl)
	roomRepo := roomMocks.NewMockRoom(ctrl)

	transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn postgres.TxFunc) error {
			tx := &memoryTx{db: db, held: map[string]*sync.Mutex{}}

			err := fn(context.WithValue(ctx, txKey{}, tx), nil)
			tx.finish(err == nil)

			return postgres.TranslateError(err)
		}).AnyTimes()
	transactor.EXPECT().LockKeys(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, keys ...string) error {
			txOf(ctx).lock(keys...)

			return nil
		}).AnyTimes()

	roomRepo.EXPECT().GetForShareTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup, _ ...string) (roomModel.Room, error) {
			db.mu.Lock()
			defer db.mu.Unlock()

			return db.rooms[idOf(filter)], nil
		}).AnyTimes()

	bookingRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
			txOf(ctx).lock("booking:" + idOf(filter))

			db.mu.Lock()
			defer db.mu.Unlock()

			return db.bookings[idOf(filter)], nil
		}).AnyTimes()
	bookingRepo.EXPECT().ListActiveTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *sqlx.Tx, roomID string, date time.Time) ([]model.Booking, error) {
			db.mu.Lock()
			active := db.active(roomID, date)
			db.mu.Unlock()

			// let concurrent transactions run between the overlap check and the write
			runtime.Gosched()
			time.Sleep(time.Millisecond)

			return active, nil
		}).AnyTimes()
	bookingRepo.EXPECT().ListActive(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, roomID string, date time.Time) ([]model.Booking, error) {
			db.mu.Lock()
			defer db.mu.Unlock()

			return db.active(roomID, date), nil
		}).AnyTimes()
	bookingRepo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, booking model.Booking) error {
			txOf(ctx).putBooking(booking)

			return nil
		}).AnyTimes()
	bookingRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, update map[string]any, filter gDto.FilterGroup) error {
			db.mu.Lock()
			booking := db.bookings[idOf(filter)]
			db.mu.Unlock()

			applyBookingUpdate(&booking, update)
			txOf(ctx).putBooking(booking)

			return nil
		}).AnyTimes()

	paymentRepo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, payment paymentModel.Payment) error {
			if db.failPaymentInsert {
				return context.DeadlineExceeded
			}

			txOf(ctx).putPayment(payment.ID, &payment)

			return nil
		}).AnyTimes()
	paymentRepo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup, _ ...string) (paymentModel.Payment, error) {
			db.mu.Lock()
			defer db.mu.Unlock()

			return db.payments[idOf(filter)], nil
		}).AnyTimes()
	paymentRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, update map[string]any, filter gDto.FilterGroup) error {
			db.mu.Lock()
			payment := db.payments[idOf(filter)]
			db.mu.Unlock()

			applyPaymentUpdate(&payment, update)
			txOf(ctx).putPayment(payment.ID, &payment)

			return nil
		}).AnyTimes()
	paymentRepo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
			txOf(ctx).putPayment(idOf(filter), nil)

			return nil
		}).AnyTimes()

	return &fixture{
		store: store.New(transactor, bookingRepo, paymentRepo, roomRepo, otelMocks.NewOtel()),
		db:    db,
		day:   model.DateOf(timezone.Today().AddDate(0, 0, 1)),
	}
}

// seed stores a booking directly, bypassing the store.
func (f *fixture) seed(id string, variant model.BookerVariant, status model.Status, start, end string) model.Booking {
	booking := model.Booking{
		ID:            id,
		RoomID:        "falcon",
		BookerVariant: variant,
		BookerRef:     id + "@example.com",
		BookingDate:   f.day,
		StartTime:     schedule.MustClock(start),
		EndTime:       schedule.MustClock(end),
		Attendees:     2,
		Status:        status,
	}

	f.db.bookings[id] = booking

	return booking
}

func (f *fixture) draft(variant model.BookerVariant, start, end string, attendees int) store.Draft {
	return store.Draft{
		RoomID:        "falcon",
		BookerVariant: variant,
		BookerRef:     "someone@example.com",
		ContactName:   "Someone",
		ContactEmail:  "someone@example.com",
		Date:          f.day,
		Interval:      schedule.Interval{Start: schedule.MustClock(start), End: schedule.MustClock(end)},
		Attendees:     attendees,
		PaymentMethod: paymentModel.MethodTransfer,
	}
}

func (db *memoryDB) active(roomID string, date time.Time) []model.Booking {
	var bookings []model.Booking

	for _, booking := range db.bookings {
		if booking.RoomID == roomID && booking.BookingDate.Equal(model.DateOf(date)) && booking.IsActive() {
			bookings = append(bookings, booking)
		}
	}

	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartTime < bookings[j].StartTime })

	return bookings
}

func idOf(filter gDto.FilterGroup) string {
	id, _ := filter.Filters[0].(gDto.Filter).Value.(string)

	return id
}

func applyBookingUpdate(booking *model.Booking, update map[string]any) {
	for field, value := range update {
		switch field {
		case model.FieldBookingDate:
			booking.BookingDate, _ = value.(time.Time)
		case model.FieldStartTime:
			booking.StartTime, _ = value.(schedule.Clock)
		case model.FieldEndTime:
			booking.EndTime, _ = value.(schedule.Clock)
		case model.FieldDuration:
			booking.Duration, _ = value.(float64)
		case model.FieldTotalAmount:
			booking.TotalAmount, _ = value.(float64)
		case model.FieldStatus:
			status, _ := value.(string)
			booking.Status = model.Status(status)
		case model.FieldPaymentID:
			if value == nil {
				booking.PaymentID = nil
			}
		case model.FieldCancelReason:
			reason, _ := value.(string)
			booking.CancelReason = &reason
		case constant.FieldModifiedBy:
			booking.ModifiedBy, _ = value.(string)
		case constant.FieldModifiedAt:
			booking.ModifiedAt, _ = value.(time.Time)
		}
	}
}

func applyPaymentUpdate(payment *paymentModel.Payment, update map[string]any) {
	for field, value := range update {
		switch field {
		case paymentModel.FieldAmount:
			payment.Amount, _ = value.(float64)
		case paymentModel.FieldStatus:
			status, _ := value.(string)
			payment.Status = paymentModel.Status(status)
		case paymentModel.FieldPaidAt:
			paidAt, _ := value.(time.Time)
			payment.PaidAt = &paidAt
		case constant.FieldModifiedBy:
			payment.ModifiedBy, _ = value.(string)
		}
	}
}
