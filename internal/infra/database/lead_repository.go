package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/smartplaces/community-api/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `
		SELECT id, email, COALESCE(name, ''), intent,
		       zones, budget_min, budget_max, property_types,
		       consent, weekly_updates, source,
		       COALESCE(utm_source, ''), COALESCE(utm_medium, ''),
		       COALESCE(utm_campaign, ''), COALESCE(utm_term, ''),
		       COALESCE(utm_content, ''),
		       internal_notes, created_at, updated_at
		FROM leads
		WHERE email = $1
	`

	lead := &entity.Lead{}
	var notes sql.NullString

	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&lead.ID,
		&lead.Email,
		&lead.Name,
		&lead.Intent,
		pq.Array(&lead.Zones),
		&lead.BudgetMin,
		&lead.BudgetMax,
		pq.Array(&lead.PropertyTypes),
		&lead.Consent,
		&lead.WeeklyUpdates,
		&lead.Source,
		&lead.UTMSource,
		&lead.UTMMedium,
		&lead.UTMCampaign,
		&lead.UTMTerm,
		&lead.UTMContent,
		&notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		lead.InternalNotes = &notes.String
	}

	return lead, nil
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, email, name, intent, zones, budget_min, budget_max,
			property_types, consent, weekly_updates, source,
			utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		lead.Email,
		nullString(lead.Name),
		lead.Intent,
		pq.Array(lead.Zones),
		lead.BudgetMin,
		lead.BudgetMax,
		pq.Array(lead.PropertyTypes),
		lead.Consent,
		lead.WeeklyUpdates,
		lead.Source,
		nullString(lead.UTMSource),
		nullString(lead.UTMMedium),
		nullString(lead.UTMCampaign),
		nullString(lead.UTMTerm),
		nullString(lead.UTMContent),
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return entity.ErrEmailTaken
	}

	return err
}

// Update només toca la llista de columnes escrivibles pel client.
// internal_notes no apareix al SET: la preservació no depèn del que
// porti el payload.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2,
			intent = $3,
			zones = $4,
			budget_min = $5,
			budget_max = $6,
			property_types = $7,
			consent = $8,
			weekly_updates = $9,
			source = $10,
			utm_source = $11,
			utm_medium = $12,
			utm_campaign = $13,
			utm_term = $14,
			utm_content = $15,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		nullString(lead.Name),
		lead.Intent,
		pq.Array(lead.Zones),
		lead.BudgetMin,
		lead.BudgetMax,
		pq.Array(lead.PropertyTypes),
		lead.Consent,
		lead.WeeklyUpdates,
		lead.Source,
		nullString(lead.UTMSource),
		nullString(lead.UTMMedium),
		nullString(lead.UTMCampaign),
		nullString(lead.UTMTerm),
		nullString(lead.UTMContent),
	).Scan(&lead.UpdatedAt)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
