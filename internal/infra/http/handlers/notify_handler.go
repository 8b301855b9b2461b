package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/smartplaces/community-api/internal/infra/http/middleware"
	"github.com/smartplaces/community-api/internal/usecase"
)

// NotifyHandler rep els events d'inserció que dispara la base de
// dades i els passa al despatxador de notificacions.
type NotifyHandler struct {
	UC *usecase.NotifyInsertUseCase
}

func NewNotifyHandler(uc *usecase.NotifyInsertUseCase) *NotifyHandler {
	return &NotifyHandler{UC: uc}
}

func (h *NotifyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event usecase.ChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.WithError(err).Error("notify: bad event payload")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if !h.UC.Matches(event) {
		writeJSON(w, http.StatusOK, map[string]string{"message": h.UC.NoOpMessage()})
		return
	}

	output := h.UC.Execute(r.Context(), event.Record)

	middleware.RecordNotification("email", output.Email.Status())
	middleware.RecordNotification("sms", output.SMS.Status())

	writeJSON(w, http.StatusOK, output)
}
