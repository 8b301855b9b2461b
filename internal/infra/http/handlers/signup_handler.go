package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"github.com/smartplaces/community-api/internal/infra/http/middleware"
	"github.com/smartplaces/community-api/internal/usecase"
)

type SignupHandler struct {
	UC *usecase.SignupLeadUseCase
}

func NewSignupHandler(uc *usecase.SignupLeadUseCase) *SignupHandler {
	return &SignupHandler{UC: uc}
}

type signupResponse struct {
	OK      bool                  `json:"ok"`
	Lead    *usecase.SignupOutput `json:"lead,omitempty"`
	Message string                `json:"message,omitempty"`
}

func (h *SignupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, signupResponse{OK: false, Message: "JSON no vàlid"})
		return
	}

	output, err := h.UC.Execute(r.Context(), getClientIP(r), input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	middleware.RecordLeadCapture("ok")
	writeJSON(w, http.StatusOK, signupResponse{OK: true, Lead: output})
}

func (h *SignupHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrThrottled) {
		middleware.RecordLeadCapture("throttled")
		writeJSON(w, http.StatusTooManyRequests, signupResponse{OK: false, Message: err.Error()})
		return
	}

	var verrs usecase.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.RecordLeadCapture("invalid")
		writeJSON(w, http.StatusBadRequest, signupResponse{OK: false, Message: verrs.Error()})
		return
	}

	// El detall es queda al servidor; el client rep el missatge genèric.
	log.WithError(err).Error("signup failed")
	sentry.CaptureException(err)
	middleware.RecordLeadCapture("error")

	message := "Error intern del servidor"
	var terr *usecase.TechnicalError
	if errors.As(err, &terr) {
		message = terr.Message
	}

	writeJSON(w, http.StatusInternalServerError, signupResponse{OK: false, Message: message})
}

// MethodNotAllowed respon amb la mateixa forma JSON que la resta
// d'errors de l'endpoint.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, signupResponse{OK: false, Message: "Mètode no permès"})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
