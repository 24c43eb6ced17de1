package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/portfolio-hub/gateway/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.JSON(w, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestData(t *testing.T) {
	w := httptest.NewRecorder()
	response.Data(w, []string{"a", "b"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"a", "b"}, body["data"])
}

func TestData_EmptySliceIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	response.Data(w, []string{})

	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestCollection(t *testing.T) {
	w := httptest.NewRecorder()
	response.Collection(w, []int{1, 2}, response.Pagination{Limit: 2, Offset: 4, Total: 9})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[1,2],"pagination":{"limit":2,"offset":4,"total":9}}`, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusForbidden, "Access denied to this project")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Access denied to this project"}`, w.Body.String())
}

func TestErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	response.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to fetch tasks", "connection reset")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch tasks","details":"connection reset"}`, w.Body.String())
}

func TestInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	response.InternalError(w, "nil map write")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","message":"nil map write"}`, w.Body.String())
}
