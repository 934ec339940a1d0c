package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"deskhub/shared"
	cacheMocks "deskhub/shared/cache/mocks"
	"deskhub/shared/constant"
	"deskhub/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOptionalBool(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		input string
		want  *bool
	}{
		{input: "", want: nil},
		{input: "true", want: &yes},
		{input: "0", want: &no},
		{input: "maybe", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.OptionalBool(tt.input))
		})
	}
}

func TestOptionalNumber(t *testing.T) {
	capacity, err := shared.OptionalNumber[int](" 12 ")
	require.NoError(t, err)
	require.NotNil(t, capacity)
	assert.Equal(t, 12, *capacity)

	price, err := shared.OptionalNumber[float64]("150000.50")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.InDelta(t, 150000.50, *price, 0.001)

	missing, err := shared.OptionalNumber[int]("  ")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = shared.OptionalNumber[int]("twelve")
	assert.Error(t, err)

	_, err = shared.OptionalNumber[int]("1.5")
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name         string
		total, limit int
		want         int
	}{
		{name: "empty listing", total: 0, limit: 10, want: 1},
		{name: "bad limit", total: 100, limit: -5, want: 1},
		{name: "exact", total: 100, limit: 10, want: 10},
		{name: "remainder", total: 101, limit: 10, want: 11},
		{name: "single row", total: 1, limit: 50, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.TotalPages(tt.total, tt.limit))
		})
	}
}

func TestChangedFields(t *testing.T) {
	type roomPatch struct {
		Name     string `db:"name"`
		Capacity *int   `db:"capacity"`
		Price    *int   `db:"price_per_hour"`
		Notes    string `db:"-"`
		Ignored  string
	}

	zero := 0
	fields := shared.ChangedFields(&roomPatch{Name: "Falcon", Capacity: &zero, Notes: "n", Ignored: "x"}, "admin-1")

	assert.Equal(t, "Falcon", fields["name"])
	assert.Equal(t, 0, fields["capacity"])
	assert.NotContains(t, fields, "price_per_hour")
	assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, fields[constant.FieldModifiedAt])
	assert.Len(t, fields, 4)
}

func TestFilterByID(t *testing.T) {
	result := shared.FilterByID("123", "id", "rooms")

	expected := dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    "id",
				Value:    "123",
				Operator: dto.FilterOperatorEq,
				Table:    "rooms",
			},
		},
	}

	assert.Equal(t, expected, result)

	where, args := result.GetWhereClause()
	assert.Equal(t, "(rooms.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "123"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get:abc", shared.BuildCacheKey("booking:get", "abc"))
	assert.Equal(t, "room:availability:r1:2026-10-20", shared.BuildCacheKey("room:availability", "r1", "2026-10-20"))
	assert.Equal(t, "prefix", shared.BuildCacheKey("prefix"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "room_id", Operator: dto.FilterOperatorEq, Value: "r1"},
			dto.Filter{Field: "status", Operator: dto.FilterOperatorEq, Value: "PENDING"},
		},
	}
	params := dto.QueryParams{Page: 1, Limit: 10}

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "booking:gets:1:10"))
	assert.Contains(t, first, "room_id=r1")
	assert.Contains(t, first, "status=PENDING")

	params.Page = 2
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("booking:gets", params, filter))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Clear(gomock.Any(), "booking:gets:*").Return(nil)
	shared.InvalidateCaches(context.Background(), mockCache, "booking:gets")

	mockCache.EXPECT().Clear(gomock.Any(), "room:gets:*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), mockCache, "room:gets")
}
