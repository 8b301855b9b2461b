package usecase

import (
	"errors"
	"strings"
)

// ErrThrottled: el client ha superat el límit de peticions. Es detecta
// abans de tocar res més.
var ErrThrottled = errors.New("Massa peticions. Prova-ho més tard.")

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors porta totes les regles violades, no només la primera.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, ", ")
}

// TechnicalError: fallada d'infraestructura (store, broker). El detall
// es registra al servidor; al client només li arriba un missatge genèric.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}
