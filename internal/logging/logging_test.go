package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogFormat_UnmarshalText(t *testing.T) {
	var f LogFormat
	require.NoError(t, f.UnmarshalText([]byte("JSON")))
	require.Equal(t, FormatJSON, f)
	require.NoError(t, f.UnmarshalText([]byte("text")))
	require.Equal(t, FormatText, f)
	require.Error(t, f.UnmarshalText([]byte("xml")))
}

func TestConfigure_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := configure(logrus.New(), Config{Format: FormatJSON, Level: "debug"}, buf)
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("address", "abc").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["_msg"])
	require.Equal(t, "abc", entry["address"])
}

func TestConfigure_BadLevel(t *testing.T) {
	_, err := configure(logrus.New(), Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestLoggerMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := configure(logrus.New(), Config{Format: FormatJSON}, buf)
	require.NoError(t, err)

	e := echo.New()
	e.Use(LoggerMiddleware(logger))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/balance/:address", func(c echo.Context) error { return c.String(http.StatusOK, "1") })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Zero(t, buf.Len(), "ping requests are not logged")

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/balance/abc", nil))
	require.Contains(t, buf.String(), `"uri":"/balance/abc"`)
}
