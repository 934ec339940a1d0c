package room_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	otelMocks "deskhub/infras/otel/mocks"
	"deskhub/internal/domains/room/mocks"
	"deskhub/internal/domains/room/model/dto"
	"deskhub/internal/handlers/room"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockRoomService, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := mocks.NewMockRoomService(ctrl)
	handler := room.New(service, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1/rooms", handler.Router)

	return service, router
}

type filePart struct {
	name        string
	contentType string
	content     []byte
}

func form(t *testing.T, method, path string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)

		part, err := writer.CreatePart(header)
		require.NoError(t, err)

		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func falconFields() map[string]string {
	return map[string]string{
		"name":            "Falcon",
		"location":        "Level 3",
		"capacity":        "8",
		"operating_start": "08:00",
		"operating_end":   "18:00",
		"price_per_hour":  "25.5",
	}
}

func TestCreateRoom(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error) {
			assert.Equal(t, "Falcon", req.Name)
			assert.Equal(t, 8, req.Capacity)
			assert.Equal(t, "08:00", req.OperatingStart)
			assert.Equal(t, "18:00", req.OperatingEnd)
			assert.InDelta(t, 25.5, req.PricePerHour, 0.001)
			assert.Nil(t, req.Image)

			return dto.RoomResponse{ID: "falcon", Name: req.Name, Status: "AVAILABLE", Bookable: true}, nil
		})

	rec := serve(router, form(t, http.MethodPost, "/v1/rooms", falconFields(), nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Data dto.RoomResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "falcon", out.Data.ID)
	assert.True(t, out.Data.Bookable)
}

func TestCreateRoom_WithImage(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error) {
			require.NotNil(t, req.Image)
			require.NotNil(t, req.ImageFile)
			assert.Equal(t, "falcon.png", req.Image.Filename)

			return dto.RoomResponse{ID: "falcon"}, nil
		})

	image := &filePart{name: "falcon.png", contentType: "image/png", content: []byte("\x89PNG")}

	rec := serve(router, form(t, http.MethodPost, "/v1/rooms", falconFields(), image))

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateRoom_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		change map[string]string
		image  *filePart
	}{
		{name: "off grid hours", change: map[string]string{"operating_start": "08:15"}},
		{name: "zero capacity", change: map[string]string{"capacity": "0"}},
		{name: "capacity not a number", change: map[string]string{"capacity": "eight"}},
		{name: "price not a number", change: map[string]string{"price_per_hour": "cheap"}},
		{name: "unknown status", change: map[string]string{"status": "closed"}},
		{name: "missing name", change: map[string]string{"name": ""}},
		{name: "not an image", image: &filePart{name: "notes.txt", contentType: "text/plain", content: []byte("hi")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := setup(t)

			fields := falconFields()
			for key, value := range tt.change {
				fields[key] = value
			}

			rec := serve(router, form(t, http.MethodPost, "/v1/rooms", fields, tt.image))

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateRoom_NotMultipart(t *testing.T) {
	_, router := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", bytes.NewBufferString(`{"name":"Falcon"}`))
	req.Header.Set("Content-Type", "application/json")

	assert.Equal(t, http.StatusBadRequest, serve(router, req).Code)
}

func TestGetRooms(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error) {
			fields := map[string]gDto.Filter{}

			for _, f := range filter.Filters {
				entry, ok := f.(gDto.Filter)
				require.True(t, ok)

				fields[entry.Field] = entry
			}

			require.Len(t, fields, 3)
			assert.Equal(t, gDto.FilterOperatorLike, fields["name"].Operator)
			assert.Equal(t, "fal", fields["name"].Value)
			assert.Equal(t, "MAINTENANCE", fields["status"].Value)
			assert.Equal(t, true, fields["active"].Value)

			return dto.GetRoomsResponse{TotalData: 1, TotalPage: 1, Rooms: []dto.RoomResponse{{ID: "falcon"}}}, nil
		})

	req := httptest.NewRequest(http.MethodGet, "/v1/rooms?name=fal&status=maintenance&active=true", nil)

	rec := serve(router, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetRooms_NoFilters(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error) {
			assert.Empty(t, filter.Filters)

			return dto.GetRoomsResponse{}, nil
		})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetRoomByID(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().Get(gomock.Any(), "falcon").Return(dto.RoomResponse{ID: "falcon"}, nil)
	service.EXPECT().Get(gomock.Any(), "ghost").Return(dto.RoomResponse{}, failure.NotFound("room not found"))

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/v1/rooms/falcon", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/v1/rooms/ghost", nil)).Code)
}

func TestUpdateRoom(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().
		Update(gomock.Any(), gomock.Any(), "falcon").
		DoAndReturn(func(_ context.Context, req dto.UpdateRoomRequest, _ string) error {
			require.NotNil(t, req.OperatingEnd)
			assert.Equal(t, "20:00", *req.OperatingEnd)
			assert.Nil(t, req.OperatingStart)
			assert.Nil(t, req.Capacity)
			assert.Nil(t, req.PricePerHour)
			assert.Equal(t, "MAINTENANCE", req.Status)
			assert.True(t, req.AffectsAvailability())

			return nil
		})

	fields := map[string]string{"operating_end": "20:00", "status": "maintenance"}

	rec := serve(router, form(t, http.MethodPatch, "/v1/rooms/falcon", fields, nil))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUpdateRoom_Rejected(t *testing.T) {
	_, router := setup(t)

	rec := serve(router, form(t, http.MethodPatch, "/v1/rooms/falcon", map[string]string{"operating_end": "20:10"}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRoom(t *testing.T) {
	service, router := setup(t)

	service.EXPECT().Delete(gomock.Any(), "falcon").Return(nil)
	service.EXPECT().Delete(gomock.Any(), "busy").Return(failure.Conflict("room busy still has 2 upcoming booking(s), cancel them first"))

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodDelete, "/v1/rooms/falcon", nil)).Code)

	rec := serve(router, httptest.NewRequest(http.MethodDelete, "/v1/rooms/busy", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "upcoming booking(s)")
}
