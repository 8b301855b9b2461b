package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendEmailSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var input SendEmailInput
		json.NewDecoder(r.Body).Decode(&input)
		assert.Equal(t, []string{"admin@example.com"}, input.To)

		json.NewEncoder(w).Encode(map[string]string{"id": "email-abc"})
	}))
	defer server.Close()

	client := NewClientWithBaseURL("re_test", server.URL)
	id, err := client.SendEmail(context.Background(), SendEmailInput{
		From:    "Notifications <noreply@example.com>",
		To:      []string{"admin@example.com"},
		Subject: "test",
		HTML:    "<p>hola</p>",
	})

	assert.NoError(t, err)
	assert.Equal(t, "email-abc", id)
}

func TestSendEmailAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("re_test", server.URL)
	id, err := client.SendEmail(context.Background(), SendEmailInput{})

	assert.Empty(t, id)
	assert.ErrorContains(t, err, "status 422")
}
