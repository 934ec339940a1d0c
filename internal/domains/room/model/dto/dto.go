package dto

import (
	"mime/multipart"

	"deskhub/internal/domains/booking/schedule"
	"deskhub/internal/domains/room/model"
	"deskhub/shared"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"
	gModel "deskhub/shared/model"
	"deskhub/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name           string                `json:"name"            validate:"required,max=100"`
	Location       string                `json:"location"        validate:"omitempty,max=100"`
	Capacity       int                   `json:"capacity"        validate:"required,gt=0"`
	OperatingStart string                `json:"operating_start" validate:"required,clock=grid"`
	OperatingEnd   string                `json:"operating_end"   validate:"required,clock=grid"`
	PricePerHour   float64               `json:"price_per_hour"  validate:"gte=0"`
	Status         string                `json:"status"          validate:"omitempty,oneof=AVAILABLE MAINTENANCE UNAVAILABLE"`
	Image          *multipart.FileHeader `json:"image"           validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile      multipart.File        `json:"-"`
	Active         *bool                 `json:"active"          validate:"omitempty"`
}

// OperatingHours parses the requested window and rejects an empty or inverted one.
func (c *CreateRoomRequest) OperatingHours() (schedule.Interval, error) {
	return operatingHours(c.OperatingStart, c.OperatingEnd)
}

func (c *CreateRoomRequest) ToModel(user string, hours schedule.Interval, imageURL string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	status := model.StatusAvailable
	if c.Status != "" {
		status = model.Status(c.Status)
	}

	now := timezone.Now()

	return model.Room{
		ID:             uuid.NewString(),
		Name:           c.Name,
		Location:       c.Location,
		Capacity:       c.Capacity,
		OperatingStart: hours.Start,
		OperatingEnd:   hours.End,
		PricePerHour:   c.PricePerHour,
		Image:          imageURL,
		Active:         active,
		Status:         status,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name           string                `db:"name"            json:"name"            validate:"omitempty,max=100"`
	Location       string                `db:"location"        json:"location"        validate:"omitempty,max=100"`
	Capacity       *int                  `db:"capacity"        json:"capacity"        validate:"omitempty,gt=0"`
	OperatingStart *string               `db:"operating_start" json:"operating_start" validate:"omitempty,clock=grid"`
	OperatingEnd   *string               `db:"operating_end"   json:"operating_end"   validate:"omitempty,clock=grid"`
	PricePerHour   *float64              `db:"price_per_hour"  json:"price_per_hour"  validate:"omitempty,gte=0"`
	Status         string                `db:"status"          json:"status"          validate:"omitempty,oneof=AVAILABLE MAINTENANCE UNAVAILABLE"`
	Image          *multipart.FileHeader `json:"image"         validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile      multipart.File        `json:"-"`
	Active         *bool                 `db:"active"          json:"active"          validate:"omitempty"`
}

// OperatingHours merges the requested bounds over the current ones and validates the result.
func (u *UpdateRoomRequest) OperatingHours(current schedule.Interval) (schedule.Interval, error) {
	start, end := current.Start.String(), current.End.String()

	if u.OperatingStart != nil {
		start = *u.OperatingStart
	}

	if u.OperatingEnd != nil {
		end = *u.OperatingEnd
	}

	return operatingHours(start, end)
}

// AffectsAvailability reports whether the update changes what the availability grid shows.
func (u *UpdateRoomRequest) AffectsAvailability() bool {
	return u.OperatingStart != nil || u.OperatingEnd != nil || u.Status != "" || u.Active != nil
}

func operatingHours(start, end string) (schedule.Interval, error) {
	hours, err := schedule.ParseInterval(start, end)
	if err != nil {
		return schedule.Interval{}, failure.Validation("invalid operating hours: " + err.Error()) // nolint:wrapcheck
	}

	return hours, nil
}

type RoomResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Capacity       int     `json:"capacity"`
	OperatingStart string  `json:"operating_start"`
	OperatingEnd   string  `json:"operating_end"`
	PricePerHour   float64 `json:"price_per_hour"`
	Image          string  `json:"image"`
	Active         bool    `json:"active"`
	Status         string  `json:"status"`
	Bookable       bool    `json:"bookable"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Location = model.Location
	r.Capacity = model.Capacity
	r.OperatingStart = model.OperatingStart.String()
	r.OperatingEnd = model.OperatingEnd.String()
	r.PricePerHour = model.PricePerHour
	r.Image = model.Image
	r.Active = model.Active
	r.Status = string(model.Status)
	r.Bookable = model.Bookable()
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.TotalPages(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
