package usecase

import (
	"regexp"
	"strings"

	"github.com/smartplaces/community-api/internal/entity"
)

// Forma simple local@domain.tld, la mateixa que valida el formulari.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateSignupInput aplica totes les regles i retorna totes les
// violacions juntes, en ordre. No hi ha curtcircuit: el formulari
// pinta cada missatge al costat del seu camp.
func ValidateSignupInput(input SignupInput) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(input.Email) == "" {
		errs = append(errs, ValidationError{"email", "Email és obligatori"})
	} else if !emailRegex.MatchString(strings.TrimSpace(input.Email)) {
		errs = append(errs, ValidationError{"email", "Format d'email no vàlid"})
	}

	if input.Intent == "" {
		errs = append(errs, ValidationError{"intent", "Què busques és obligatori"})
	} else if !entity.ValidIntent(input.Intent) {
		errs = append(errs, ValidationError{"intent", "Opció no vàlida per a què busques"})
	}

	if !input.Consent {
		errs = append(errs, ValidationError{"consent", "Has d'acceptar rebre comunicacions"})
	}

	if input.badName {
		errs = append(errs, ValidationError{"name", "Nom ha de ser text"})
	}

	if input.badZones {
		errs = append(errs, ValidationError{"zones", "Zones han de ser una llista"})
	}

	if input.badPropertyTypes {
		errs = append(errs, ValidationError{"property_types", "Tipus d'immoble han de ser una llista"})
	}

	if input.badBudgetMin || (input.BudgetMin != nil && *input.BudgetMin < 0) {
		errs = append(errs, ValidationError{"budget_min", "Pressupost mínim ha de ser un número positiu"})
	}

	if input.badBudgetMax || (input.BudgetMax != nil && *input.BudgetMax < 0) {
		errs = append(errs, ValidationError{"budget_max", "Pressupost màxim ha de ser un número positiu"})
	}

	if input.BudgetMin != nil && input.BudgetMax != nil &&
		*input.BudgetMin >= 0 && *input.BudgetMax >= 0 &&
		*input.BudgetMin > *input.BudgetMax {
		errs = append(errs, ValidationError{"budget", "Pressupost mínim no pot ser superior al màxim"})
	}

	return errs
}
