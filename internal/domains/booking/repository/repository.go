package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/internal/domains/booking/model"
	"deskhub/shared/constant"
	gDto "deskhub/shared/dto"
	gRepo "deskhub/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error

	// ListActive returns every active booking of a room on a date, both booker variants, ordered by start time.
	ListActive(ctx context.Context, roomID string, date time.Time) ([]model.Booking, error)
	ListActiveTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, date time.Time) ([]model.Booking, error)
	// CountUpcoming counts PENDING and CONFIRMED bookings of a room dated on or after since.
	CountUpcoming(ctx context.Context, roomID string, since time.Time) (int, error)
	CountUpcomingTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, since time.Time) (int, error)
	// ListUpcomingTx returns the bookings CountUpcomingTx counts, ordered by date.
	ListUpcomingTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, since time.Time) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

func (r *repositoryImpl) ListActive(ctx context.Context, roomID string, date time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListActive")
	defer scope.End()

	bookings, err := r.GetAll(ctx, byStartTime(), activeOn(roomID, date))
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	return bookings, nil
}

func (r *repositoryImpl) ListActiveTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, date time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListActiveTx")
	defer scope.End()

	bookings, err := r.GetAllTx(ctx, sqltx, byStartTime(), activeOn(roomID, date))
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	return bookings, nil
}

func (r *repositoryImpl) CountUpcoming(ctx context.Context, roomID string, since time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CountUpcoming")
	defer scope.End()

	count, err := r.Count(ctx, upcomingOf(roomID, since))
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming bookings: %w", err)
	}

	return count, nil
}

func (r *repositoryImpl) CountUpcomingTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, since time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CountUpcomingTx")
	defer scope.End()

	count, err := r.CountTx(ctx, sqltx, upcomingOf(roomID, since))
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming bookings: %w", err)
	}

	return count, nil
}

func (r *repositoryImpl) ListUpcomingTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, since time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListUpcomingTx")
	defer scope.End()

	bookings, err := r.GetAllTx(ctx, sqltx, byBookingDate(), upcomingOf(roomID, since))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming bookings: %w", err)
	}

	return bookings, nil
}

func upcomingOf(roomID string, since time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Operator: gDto.FilterOperatorEq, Value: roomID, Table: model.TableName},
			gDto.Filter{Field: model.FieldBookingDate, Operator: gDto.FilterOperatorGreaterEq, Value: model.DateOf(since), Table: model.TableName},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    []string{string(model.StatusPending), string(model.StatusConfirmed)},
				Table:    model.TableName,
			},
		},
	}
}

func activeOn(roomID string, date time.Time) gDto.FilterGroup {
	statuses := make([]string, len(model.ActiveStatuses))
	for i, status := range model.ActiveStatuses {
		statuses[i] = string(status)
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Operator: gDto.FilterOperatorEq, Value: roomID, Table: model.TableName},
			gDto.Filter{Field: model.FieldBookingDate, Operator: gDto.FilterOperatorEq, Value: model.DateOf(date), Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorIn, Value: statuses, Table: model.TableName},
		},
	}
}

func byStartTime() gDto.QueryParams {
	return gDto.QueryParams{SortBy: model.FieldStartTime, SortDir: gDto.SortDirAsc}
}

func byBookingDate() gDto.QueryParams {
	return gDto.QueryParams{SortBy: model.FieldBookingDate, SortDir: gDto.SortDirAsc}
}
