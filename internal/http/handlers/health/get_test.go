package health

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	Health(slog.New(slog.NewTextHandler(io.Discard, nil)), w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"resume-upload-api"}`, w.Body.String())
}

func TestRoot(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	Root(slog.New(slog.NewTextHandler(io.Discard, nil)), w)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body, "endpoints")
}
