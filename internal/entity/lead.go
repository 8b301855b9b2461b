package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Els tres valors acceptats per "què busques".
const (
	IntentCompra   = "Compra"
	IntentLloguer  = "Lloguer"
	IntentInversio = "Inversió"
)

const LeadSource = "community-landing"

// ErrEmailTaken: la inserció ha xocat amb l'índex únic d'email
// (dues primeres submissions en paral·lel).
var ErrEmailTaken = errors.New("lead email already exists")

type Lead struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name,omitempty"`
	Intent        string   `json:"intent"`
	Zones         []string `json:"zones"`
	BudgetMin     *int64   `json:"budget_min,omitempty"`
	BudgetMax     *int64   `json:"budget_max,omitempty"`
	PropertyTypes []string `json:"property_types"`
	Consent       bool     `json:"consent"`
	WeeklyUpdates bool     `json:"weekly_updates"`
	Source        string   `json:"source"`

	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`

	// Camp propietat de l'operador. Mai arriba del client i mai
	// s'escriu des del flux de signup.
	InternalNotes *string `json:"internal_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead crea un lead nou amb els defaults del sistema.
// InternalNotes queda sempre a null.
func NewLead(email string) *Lead {
	return &Lead{
		ID:            uuid.New().String(),
		Email:         NormalizeEmail(email),
		Source:        LeadSource,
		WeeklyUpdates: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// NormalizeEmail és la clau d'unicitat del lead.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidIntent(intent string) bool {
	return intent == IntentCompra || intent == IntentLloguer || intent == IntentInversio
}

type LeadRepositoryInterface interface {
	// FindByEmail retorna (nil, nil) quan no existeix.
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	// Insert retorna ErrEmailTaken si l'índex únic d'email rebutja la fila.
	Insert(ctx context.Context, lead *Lead) error
	// Update només toca les columnes escrivibles pel client.
	Update(ctx context.Context, lead *Lead) error
}
