package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/repository"
	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/response"
)

func newStudentRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(service.NewStudentService(repository.NewStudentRepository(), nil, nil))

	router := gin.New()
	router.GET("/students", handler.List)
	router.POST("/students", handler.Create)
	router.GET("/students/:id", handler.Get)
	router.GET("/students/reg/:regNo", handler.GetByRegNo)
	router.DELETE("/students/:id", handler.Deactivate)
	return router
}

func createStudentPayload() map[string]interface{} {
	return map[string]interface{}{
		"reg_no":        "24BCE10041",
		"first_name":    "Aarav",
		"last_name":     "Sharma",
		"email":         "aarav.sharma@campus.example",
		"date_of_birth": "2005-03-14",
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStudentCreateAndFetch(t *testing.T) {
	router := newStudentRouter(t)

	w := doJSON(t, router, http.MethodPost, "/students", createStudentPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var created response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	data, ok := created.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "24BCE10041", data["reg_no"])
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)

	w = doJSON(t, router, http.MethodGet, "/students/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/students/reg/24BCE10041", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStudentCreateRejectsBadRegNo(t *testing.T) {
	router := newStudentRouter(t)

	payload := createStudentPayload()
	payload["reg_no"] = "not-a-regno"
	w := doJSON(t, router, http.MethodPost, "/students", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestStudentCreateRejectsDuplicateRegNo(t *testing.T) {
	router := newStudentRouter(t)

	w := doJSON(t, router, http.MethodPost, "/students", createStudentPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/students", createStudentPayload())
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestStudentGetUnknownReturnsNotFound(t *testing.T) {
	router := newStudentRouter(t)

	w := doJSON(t, router, http.MethodGet, "/students/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestStudentListPaginates(t *testing.T) {
	router := newStudentRouter(t)

	for _, regNo := range []string{"24BCE10001", "24BCE10002", "24BCE10003"} {
		payload := createStudentPayload()
		payload["reg_no"] = regNo
		payload["email"] = regNo + "@campus.example"
		w := doJSON(t, router, http.MethodPost, "/students", payload)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/students?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 3, envelope.Pagination.TotalCount)
	assert.Equal(t, 2, envelope.Pagination.Page)
	items, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestStudentDeactivate(t *testing.T) {
	router := newStudentRouter(t)

	w := doJSON(t, router, http.MethodPost, "/students", createStudentPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.(map[string]interface{})["id"].(string)

	w = doJSON(t, router, http.MethodDelete, "/students/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
