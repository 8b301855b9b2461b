// Package client és l'equivalent programàtic del formulari de la
// landing: mateixa validació, mateix honeypot i mateixes transicions
// d'estat que el navegador, però consumible des de Go.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartplaces/community-api/internal/usecase"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateErrorsShown
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateErrorsShown:
		return "errors_shown"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// NetworkError: la petició no ha arribat al servidor. Es distingeix
// dels errors d'aplicació per poder mostrar un missatge diferent.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "Error de connexió. Comprova la teva connexió a internet i torna-ho a provar."
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError: el servidor ha respost però ha rebutjat la submissió.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Form struct {
	Endpoint string
	HTTP     *http.Client

	// Honeypot és el camp ocult del formulari. Un humà no el veu ni
	// l'omple; si porta contingut, la submissió es descarta en silenci.
	// No és una frontera de seguretat: la validació del servidor ho és.
	Honeypot string

	state State
}

type Result struct {
	Lead         usecase.SignupOutput
	Confirmation string
}

func New(endpoint string) *Form {
	return &Form{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
		state:    StateIdle,
	}
}

func (f *Form) State() State {
	return f.state
}

// Submit valida en local, envia la petició i tradueix la resposta.
// Amb el honeypot ple retorna (nil, nil): la submissió d'un bot
// simplement desapareix.
func (f *Form) Submit(ctx context.Context, input usecase.SignupInput) (*Result, error) {
	if f.Honeypot != "" {
		f.state = StateIdle
		return nil, nil
	}

	f.state = StateValidating
	if errs := usecase.ValidateSignupInput(input); len(errs) > 0 {
		f.state = StateErrorsShown
		return nil, errs
	}

	f.state = StateSubmitting

	body, err := json.Marshal(input)
	if err != nil {
		f.state = StateError
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(body))
	if err != nil {
		f.state = StateError
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		f.state = StateError
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var parsed struct {
		OK      bool                  `json:"ok"`
		Lead    *usecase.SignupOutput `json:"lead"`
		Message string                `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		f.state = StateError
		return nil, &APIError{Status: resp.StatusCode, Message: "Error del servidor"}
	}

	if resp.StatusCode != http.StatusOK || !parsed.OK || parsed.Lead == nil {
		f.state = StateError
		message := parsed.Message
		if message == "" {
			message = "Error procesant la sol·licitud"
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}

	f.state = StateSuccess
	return &Result{
		Lead:         *parsed.Lead,
		Confirmation: confirmationMessage(parsed.Lead.WeeklyUpdates),
	}, nil
}

func confirmationMessage(weeklyUpdates bool) string {
	if weeklyUpdates {
		return "Rebràs actualitzacions setmanals per email."
	}
	return "No tens activades les actualitzacions setmanals (ho pots activar quan vulguis)."
}
