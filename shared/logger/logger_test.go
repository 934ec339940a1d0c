package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"deskhub/config"
	"deskhub/shared/constant"
	"deskhub/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture swaps the global logger and level for the duration of the test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	t.Cleanup(func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	})

	buf := &bytes.Buffer{}
	log.Logger = zerolog.New(buf)

	return buf
}

func TestInitLogger(t *testing.T) {
	capture(t)

	logger.InitLogger()

	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
}

func TestErrorWithStack(t *testing.T) {
	buf := capture(t)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger.ErrorWithStack(errors.New("room r1 is locked"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "error", entry[zerolog.LevelFieldName])
	assert.Contains(t, entry[zerolog.MessageFieldName], "room r1 is locked")
	assert.Contains(t, entry[zerolog.MessageFieldName], "logger_test.go")
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{level: "debug", expected: zerolog.DebugLevel},
		{level: "info", expected: zerolog.InfoLevel},
		{level: "warn", expected: zerolog.WarnLevel},
		{level: "error", expected: zerolog.ErrorLevel},
		{level: "disabled", expected: zerolog.Disabled},
		{level: "trace", expected: zerolog.TraceLevel},
		{level: "loud", expected: zerolog.InfoLevel},
		{level: "", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			capture(t)

			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.level

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestSetLogLevel_FiltersBelowLevel(t *testing.T) {
	buf := capture(t)

	cfg := &config.Config{}
	cfg.Server.LogLevel = "warn"
	logger.SetLogLevel(cfg)

	log.Info().Msg("booking created")
	assert.Empty(t, buf.String())

	log.Warn().Msg("availability cache unreachable")
	assert.Contains(t, buf.String(), "availability cache unreachable")
}

func TestUseOutput(t *testing.T) {
	t.Run("production writes json lines", func(t *testing.T) {
		capture(t)
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		cfg := &config.Config{}
		cfg.Server.Env = constant.ServerEnvProduction
		cfg.App.Name = "deskhub"

		out := &bytes.Buffer{}
		logger.UseOutput(cfg, out)

		log.Info().Str("room_id", "r1").Msg("room created")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &entry))

		assert.Equal(t, "deskhub", entry["app"])
		assert.Equal(t, "r1", entry["room_id"])
		assert.Equal(t, "room created", entry[zerolog.MessageFieldName])
		assert.Contains(t, entry, zerolog.TimestampFieldName)
	})

	t.Run("development writes console text", func(t *testing.T) {
		capture(t)
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		cfg := &config.Config{}
		cfg.Server.Env = constant.ServerEnvDevelopment

		out := &bytes.Buffer{}
		logger.UseOutput(cfg, out)

		log.Info().Msg("room created")

		assert.Contains(t, out.String(), "room created")
		assert.False(t, json.Valid(out.Bytes()))
	})
}
