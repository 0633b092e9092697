package cmdutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevel(t *testing.T) {
	defer func() { loggerConfigInst.level = zerolog.InfoLevel.String() }()

	loggerConfigInst.level = "debug"
	logger, err := Logger()
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	loggerConfigInst.level = "noisy"
	_, err = Logger()
	require.ErrorContains(t, err, `unknown log level "noisy"`)
}

func TestMetricsServer(t *testing.T) {
	srv := httptest.NewServer(MetricsServer(zerolog.Nop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
