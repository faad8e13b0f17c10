package config

import (
	"testing"

	"github.com/akeren/gatherly-web/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPEndpoint(t *testing.T) {
	cases := []struct {
		raw      string
		host     string
		path     string
		insecure bool
	}{
		{"http://localhost:4318", "localhost:4318", "/v1/traces", true},
		{"https://otel.example.com/custom/traces", "otel.example.com", "/custom/traces", false},
		{"collector:4318", "collector:4318", "/v1/traces", true},
	}

	for _, tc := range cases {
		host, path, insecure, err := parseOTLPEndpoint(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.host, host, tc.raw)
		assert.Equal(t, tc.path, path, tc.raw)
		assert.Equal(t, tc.insecure, insecure, tc.raw)
	}

	for _, raw := range []string{"", "grpc://collector:4317", "collector:4318/v1/traces", "http:///nohost"} {
		_, _, _, err := parseOTLPEndpoint(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseSampleRatio(t *testing.T) {
	ratio, err := parseSampleRatio("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)

	ratio, err = parseSampleRatio("0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, ratio)

	for _, raw := range []string{"-0.1", "1.5", "half"} {
		_, err := parseSampleRatio(raw)
		assert.ErrorContains(t, err, "OTEL_TRACES_SAMPLE_RATIO", raw)
	}
}

func TestSetupTracing_DisabledIsNoop(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "false")

	shutdown, err := SetupTracing(log.NewLoggerWithJSONOutput())

	assert.NoError(t, err)
	assert.Nil(t, shutdown)
}
