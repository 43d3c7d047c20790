package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var body Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	WriteOK(w, "Login riuscito", Envelope{"token": "abc"})

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Login riuscito", body["message"])
	assert.Equal(t, "abc", body["token"])
}

func TestWriteOK_EmptyMessageOmitted(t *testing.T) {
	w := httptest.NewRecorder()
	WriteOK(w, "", Envelope{"rows": []int{}})

	body := decodeBody(t, w)
	_, hasMessage := body["message"]
	assert.False(t, hasMessage)
}

func TestWriteLockedOut(t *testing.T) {
	w := httptest.NewRecorder()
	WriteLockedOut(w, "attendi 30 secondi", 30)

	assert.Equal(t, 429, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, float64(30), body["remaining_seconds"])
}

func TestWriteErrorEnvelope_CustomStatusCode(t *testing.T) {
	// Some endpoints report recoverable conditions as an error
	// envelope at 200.
	w := httptest.NewRecorder()
	WriteErrorEnvelope(w, 200, "Nessun file disponibile", nil)

	assert.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "error", body["status"])
}

func TestCommonErrorWriters(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w *httptest.ResponseRecorder)
		wantCode int
	}{
		{"bad request", func(w *httptest.ResponseRecorder) { WriteBadRequest(w, "m") }, 400},
		{"unauthorized", func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "m") }, 401},
		{"not found", func(w *httptest.ResponseRecorder) { WriteNotFound(w, "m") }, 404},
		{"internal", func(w *httptest.ResponseRecorder) { WriteInternalError(w, "m") }, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.wantCode, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, "m", body["message"])
		})
	}
}
