package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/estoque-api/internal/config"
)

func TestLogFormatUnmarshalText(t *testing.T) {
	var f config.LogFormat

	require.NoError(t, f.UnmarshalText([]byte("json")))
	assert.Equal(t, config.LogFormatJSON, f)

	require.NoError(t, f.UnmarshalText([]byte("TEXT")))
	assert.Equal(t, config.LogFormatText, f)

	assert.Error(t, f.UnmarshalText([]byte("yaml")))
}

func TestLogFormatString(t *testing.T) {
	assert.Equal(t, "JSON", config.LogFormatJSON.String())
	assert.Equal(t, "TEXT", config.LogFormatText.String())
}
