package schedule_test

import (
	"encoding/json"
	"testing"
	"time"

	"deskhub/internal/domains/booking/schedule"
	"deskhub/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    schedule.Clock
		wantErr bool
	}{
		{name: "hour mark", input: "09:00", want: 540},
		{name: "half hour", input: "17:30", want: 1050},
		{name: "database seconds", input: "10:30:00", want: 630},
		{name: "off grid still parses", input: "10:15", want: 615},
		{name: "non zero seconds", input: "10:30:15", wantErr: true},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "out of range", input: "24:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.ParseClock(tt.input)

			if tt.wantErr {
				assert.True(t, failure.IsKind(err, failure.KindValidation))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_Grid(t *testing.T) {
	assert.True(t, schedule.MustClock("09:00").OnGrid())
	assert.True(t, schedule.MustClock("09:30").OnGrid())
	assert.False(t, schedule.MustClock("09:15").OnGrid())
	assert.Equal(t, "07:05", schedule.MustClock("07:05").String())
	assert.InDelta(t, 1.5, schedule.MustClock("10:00").Hours(schedule.MustClock("11:30")), 0.0001)
}

func TestClock_On(t *testing.T) {
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	got := schedule.MustClock("14:30").On(date)

	assert.Equal(t, time.Date(2026, 10, 20, 14, 30, 0, 0, time.UTC), got)
}

func TestClock_JSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Start schedule.Clock `json:"start"`
	}{Start: schedule.MustClock("08:30")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"08:30"}`, string(payload))

	var decoded struct {
		Start schedule.Clock `json:"start"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"start":"13:00"}`), &decoded))
	assert.Equal(t, schedule.MustClock("13:00"), decoded.Start)

	assert.Error(t, json.Unmarshal([]byte(`{"start":"1pm"}`), &decoded))
}

func TestClock_ScanValue(t *testing.T) {
	var c schedule.Clock

	require.NoError(t, c.Scan([]byte("09:30:00")))
	assert.Equal(t, schedule.MustClock("09:30"), c)

	require.NoError(t, c.Scan(time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, schedule.MustClock("18:00"), c)

	assert.Error(t, c.Scan(42))

	value, err := schedule.MustClock("11:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "11:00:00", value)
}
