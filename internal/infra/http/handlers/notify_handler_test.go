package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartplaces/community-api/internal/usecase"
)

func postNotify(t *testing.T, handler *NotifyHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/notify/lead", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Handle(w, req)
	return w
}

func TestNotifyHandlerTableMismatchIsNoOp(t *testing.T) {
	handler := NewNotifyHandler(usecase.NewLeadNotifier(usecase.NotifyConfig{}, nil, nil))

	body, _ := json.Marshal(map[string]interface{}{
		"table":  "other_table",
		"type":   "INSERT",
		"record": map[string]interface{}{"email": "a@b.com"},
	})
	w := postNotify(t, handler, body)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "Not a realbrave insert event", response["message"])
	assert.NotContains(t, response, "email")
}

func TestNotifyHandlerNothingConfigured(t *testing.T) {
	handler := NewNotifyHandler(usecase.NewLeadNotifier(usecase.NotifyConfig{}, nil, nil))

	body, _ := json.Marshal(map[string]interface{}{
		"table":  "realbrave",
		"type":   "INSERT",
		"record": map[string]interface{}{"email": "a@b.com", "name": "Anna"},
	})
	w := postNotify(t, handler, body)

	assert.Equal(t, http.StatusOK, w.Code)

	var response usecase.NotifyOutput
	json.NewDecoder(w.Body).Decode(&response)

	assert.True(t, response.Success)
	assert.False(t, response.Email.Sent)
	assert.Contains(t, response.Email.Message, "not set")
	assert.False(t, response.SMS.Sent)
	assert.Contains(t, response.SMS.Message, "not set")
}

func TestNotifyHandlerBadJSON(t *testing.T) {
	handler := NewNotifyHandler(usecase.NewLeadNotifier(usecase.NotifyConfig{}, nil, nil))

	w := postNotify(t, handler, []byte("{trencat"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	json.NewDecoder(w.Body).Decode(&response)
	assert.NotEmpty(t, response["error"])
}
