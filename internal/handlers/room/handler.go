package room

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"deskhub/infras/otel"
	"deskhub/internal/domains/room/model"
	"deskhub/internal/domains/room/model/dto"
	"deskhub/internal/domains/room/service"
	"deskhub/shared"
	"deskhub/shared/constant"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"
	"deskhub/shared/validator"
	"deskhub/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const formImage = "image"

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router registers the room endpoints on a router already scoped to /rooms.
func (handler *Handler) Router(router chi.Router) {
	router.Post("/", handler.CreateRoom)
	router.Get("/", handler.GetRooms)
	router.Get("/{id}", handler.GetRoomByID)
	router.Patch("/{id}", handler.UpdateRoom)
	router.Delete("/{id}", handler.DeleteRoom)
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Description Create a bookable room with its operating hours and hourly price.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room name"
// @Param location formData string false "Room location"
// @Param capacity formData integer true "Maximum attendees"
// @Param operating_start formData string true "Opening time (HH:MM on the half hour)"
// @Param operating_end formData string true "Closing time (HH:MM on the half hour)"
// @Param price_per_hour formData number false "Price per hour"
// @Param status formData string false "AVAILABLE, MAINTENANCE or UNAVAILABLE"
// @Param active formData boolean false "Room active status"
// @Param image formData file false "Room image"
// @Success 201 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		err = failure.BadRequest(fmt.Errorf("failed to parse multipart form: %w", err))
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	req := dto.CreateRoomRequest{
		Name:           request.FormValue(model.FieldName),
		Location:       request.FormValue(model.FieldLocation),
		OperatingStart: request.FormValue(model.FieldOperatingStart),
		OperatingEnd:   request.FormValue(model.FieldOperatingEnd),
		Status:         strings.ToUpper(request.FormValue(model.FieldStatus)),
		Active:         shared.OptionalBool(request.FormValue(model.FieldActive)),
	}

	capacity, err := formInt(request, model.FieldCapacity)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	price, err := formFloat(request, model.FieldPricePerHour)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if capacity != nil {
		req.Capacity = *capacity
	}

	if price != nil {
		req.PricePerHour = *price
	}

	file, fileHeader := formFile(request)
	if file != nil {
		defer file.Close()

		req.Image = fileHeader
		req.ImageFile = file
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	room, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, room)
}

// GetRooms retrieves all rooms based on query parameters.
// @Summary Get all rooms
// @Description Retrieve all rooms with optional filtering and pagination.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param location query string false "Filter by location"
// @Param status query string false "Filter by status"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.ParseQueryParams(r.URL.Query())

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldName, model.FieldLocation} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorLike,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	if status := query.Get(model.FieldStatus); status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    strings.ToUpper(status),
			Table:    model.TableName,
		})
	}

	if active := shared.OptionalBool(query.Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom updates an existing room by its ID.
// @Summary Update a room by ID
// @Description Changes apply to bookings made afterwards. Existing bookings keep their slot and price.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room ID"
// @Param name formData string false "Room name"
// @Param location formData string false "Room location"
// @Param capacity formData integer false "Maximum attendees"
// @Param operating_start formData string false "Opening time (HH:MM)"
// @Param operating_end formData string false "Closing time (HH:MM)"
// @Param price_per_hour formData number false "Price per hour"
// @Param status formData string false "AVAILABLE, MAINTENANCE or UNAVAILABLE"
// @Param active formData boolean false "Room active status"
// @Param image formData file false "Room image"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		err = failure.BadRequest(fmt.Errorf("failed to parse multipart form: %w", err))
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.UpdateRoomRequest{
		Name:           r.FormValue(model.FieldName),
		Location:       r.FormValue(model.FieldLocation),
		OperatingStart: formString(r, model.FieldOperatingStart),
		OperatingEnd:   formString(r, model.FieldOperatingEnd),
		Status:         strings.ToUpper(r.FormValue(model.FieldStatus)),
		Active:         shared.OptionalBool(r.FormValue(model.FieldActive)),
	}

	var err error

	if req.Capacity, err = formInt(r, model.FieldCapacity); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if req.PricePerHour, err = formFloat(r, model.FieldPricePerHour); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	file, fileHeader := formFile(r)
	if file != nil {
		defer file.Close()

		req.Image = fileHeader
		req.ImageFile = file
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// DeleteRoom deletes a room by its ID.
// @Summary Delete a room by ID
// @Description Refused while the room has pending or confirmed bookings from today on.
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Room has upcoming bookings"
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to delete room")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}

func formString(r *http.Request, field string) *string {
	value := r.FormValue(field)
	if value == "" {
		return nil
	}

	return &value
}

func formInt(r *http.Request, field string) (*int, error) {
	value, err := shared.OptionalNumber[int](r.FormValue(field))
	if err != nil {
		return nil, failure.Validation(field + " must be a whole number") // nolint:wrapcheck
	}

	return value, nil
}

func formFloat(r *http.Request, field string) (*float64, error) {
	value, err := shared.OptionalNumber[float64](r.FormValue(field))
	if err != nil {
		return nil, failure.Validation(field + " must be a number") // nolint:wrapcheck
	}

	return value, nil
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader) {
	file, header, err := r.FormFile(formImage)
	if err != nil {
		return nil, nil
	}

	return file, header
}
