package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func messages(errs ValidationErrors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

func TestValidateMissingRequiredFields(t *testing.T) {
	errs := ValidateSignupInput(SignupInput{})

	msgs := messages(errs)
	assert.Contains(t, msgs, "Email és obligatori")
	assert.Contains(t, msgs, "Què busques és obligatori")
	assert.Contains(t, msgs, "Has d'acceptar rebre comunicacions")
	assert.Len(t, errs, 3)
}

func TestValidateBadEmailFormat(t *testing.T) {
	errs := ValidateSignupInput(SignupInput{
		Email:   "bad-email",
		Intent:  "Compra",
		Consent: true,
	})

	assert.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "Format d'email no vàlid", errs[0].Message)
}

func TestValidateInvalidIntent(t *testing.T) {
	errs := ValidateSignupInput(SignupInput{
		Email:   "a@b.com",
		Intent:  "Venda",
		Consent: true,
	})

	assert.Len(t, errs, 1)
	assert.Equal(t, "Opció no vàlida per a què busques", errs[0].Message)
}

func TestValidateBudgetRange(t *testing.T) {
	min := int64(500000)
	max := int64(300000)

	errs := ValidateSignupInput(SignupInput{
		Email:     "a@b.com",
		Intent:    "Compra",
		Consent:   true,
		BudgetMin: &min,
		BudgetMax: &max,
	})

	assert.Len(t, errs, 1)
	assert.Equal(t, "Pressupost mínim no pot ser superior al màxim", errs[0].Message)
}

func TestValidateNegativeBudgets(t *testing.T) {
	min := int64(-1)
	max := int64(-5)

	errs := ValidateSignupInput(SignupInput{
		Email:     "a@b.com",
		Intent:    "Lloguer",
		Consent:   true,
		BudgetMin: &min,
		BudgetMax: &max,
	})

	msgs := messages(errs)
	assert.Contains(t, msgs, "Pressupost mínim ha de ser un número positiu")
	assert.Contains(t, msgs, "Pressupost màxim ha de ser un número positiu")
}

func TestValidateAllViolationsReportedTogether(t *testing.T) {
	min := int64(200)
	max := int64(100)

	errs := ValidateSignupInput(SignupInput{
		Email:     "trencat",
		BudgetMin: &min,
		BudgetMax: &max,
	})

	// email + intent + consent + rang de pressupost, tot de cop
	assert.Len(t, errs, 4)
}

func TestValidateMistypedOptionalFields(t *testing.T) {
	var input SignupInput
	err := json.Unmarshal([]byte(`{
		"email": "a@b.com",
		"intent": "Compra",
		"consent": true,
		"name": 123,
		"zones": "Gràcia",
		"property_types": "pis",
		"budget_min": "molt",
		"budget_max": false
	}`), &input)
	assert.NoError(t, err)

	msgs := messages(ValidateSignupInput(input))
	assert.Equal(t, []string{
		"Nom ha de ser text",
		"Zones han de ser una llista",
		"Tipus d'immoble han de ser una llista",
		"Pressupost mínim ha de ser un número positiu",
		"Pressupost màxim ha de ser un número positiu",
	}, msgs)
}

func TestValidateMistypedFieldDoesNotHideOtherViolations(t *testing.T) {
	// Un camp amb el tipus equivocat no es menja la resta de la llista:
	// el consentiment absent s'ha de reportar igualment.
	var input SignupInput
	err := json.Unmarshal([]byte(`{
		"email": "a@b.com",
		"intent": "Compra",
		"name": 123
	}`), &input)
	assert.NoError(t, err)

	msgs := messages(ValidateSignupInput(input))
	assert.Equal(t, []string{
		"Has d'acceptar rebre comunicacions",
		"Nom ha de ser text",
	}, msgs)
}

func TestValidateMistypedRequiredFieldsReportAsMissing(t *testing.T) {
	var input SignupInput
	err := json.Unmarshal([]byte(`{
		"email": 42,
		"intent": ["Compra"],
		"consent": "sí"
	}`), &input)
	assert.NoError(t, err)

	msgs := messages(ValidateSignupInput(input))
	assert.Equal(t, []string{
		"Email és obligatori",
		"Què busques és obligatori",
		"Has d'acceptar rebre comunicacions",
	}, msgs)
}

func TestValidateMistypedWeeklyUpdatesIsTolerated(t *testing.T) {
	var input SignupInput
	err := json.Unmarshal([]byte(`{
		"email": "a@b.com",
		"intent": "Compra",
		"consent": true,
		"weekly_updates": "yes"
	}`), &input)
	assert.NoError(t, err)

	// Es tracta com absent: cap error i el valor per defecte (actiu).
	assert.Empty(t, ValidateSignupInput(input))
	assert.Nil(t, input.WeeklyUpdates)
}

func TestValidateMinimalValidPayload(t *testing.T) {
	errs := ValidateSignupInput(SignupInput{
		Email:   "a@b.com",
		Intent:  "Compra",
		Consent: true,
	})

	assert.Empty(t, errs)
}
