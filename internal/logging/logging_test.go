package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	setup(&buf, "PROD", "warn")

	log.Info().Msg("dropped")
	log.Warn().Str("session_id", "s-1").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "s-1", line["session_id"])
	require.Equal(t, "warn", line["level"])
}

func TestSetupUnknownLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	setup(&buf, "PROD", "loud")
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
