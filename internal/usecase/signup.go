package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/smartplaces/community-api/internal/entity"
	"github.com/smartplaces/community-api/internal/infra/queue"
	"github.com/smartplaces/community-api/internal/infra/ratelimit"
)

// SignupLeadUseCase és el pipeline sencer del formulari:
// RateLimitCheck → Validate → Lookup → {Insert | Update} →
// NotifyIfEnabled → Respond.
type SignupLeadUseCase struct {
	Repo    entity.LeadRepositoryInterface
	Limiter ratelimit.Limiter
	Queue   queue.QueueProducerInterface
}

func NewSignupLeadUseCase(
	repo entity.LeadRepositoryInterface,
	limiter ratelimit.Limiter,
	producer queue.QueueProducerInterface,
) *SignupLeadUseCase {
	return &SignupLeadUseCase{
		Repo:    repo,
		Limiter: limiter,
		Queue:   producer,
	}
}

func (uc *SignupLeadUseCase) Execute(ctx context.Context, clientID string, input SignupInput) (*SignupOutput, error) {
	if uc.Limiter != nil && !uc.Limiter.Allow(clientID) {
		return nil, ErrThrottled
	}

	if errs := ValidateSignupInput(input); len(errs) > 0 {
		return nil, errs
	}

	email := entity.NormalizeEmail(input.Email)

	existing, err := uc.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, &TechnicalError{Code: "LOOKUP_FAILED", Message: "Error intern del servidor", Err: err}
	}

	var lead *entity.Lead
	if existing != nil {
		lead = uc.applyInput(existing, input)
		if err := uc.Repo.Update(ctx, lead); err != nil {
			return nil, &TechnicalError{Code: "UPDATE_FAILED", Message: "Error actualitzant les preferències", Err: err}
		}
	} else {
		lead = uc.applyInput(entity.NewLead(email), input)
		err := uc.Repo.Insert(ctx, lead)
		if errors.Is(err, entity.ErrEmailTaken) {
			// Dues primeres submissions corrent alhora: l'índex únic
			// ha guanyat la cursa per nosaltres, reintentem com a update.
			lead, err = uc.retryAsUpdate(ctx, email, input)
		}
		if err != nil {
			return nil, &TechnicalError{Code: "INSERT_FAILED", Message: "Error creant el registre", Err: err}
		}
	}

	if lead.WeeklyUpdates {
		uc.enqueueWelcome(ctx, lead)
	}

	return &SignupOutput{
		ID:            lead.ID,
		Email:         lead.Email,
		WeeklyUpdates: lead.WeeklyUpdates,
	}, nil
}

// applyInput construeix el registre només a partir dels camps
// escrivibles pel client. InternalNotes es trasllada del registre
// existent tal qual: mai depèn del payload.
func (uc *SignupLeadUseCase) applyInput(base *entity.Lead, input SignupInput) *entity.Lead {
	lead := &entity.Lead{
		ID:            base.ID,
		Email:         base.Email,
		Name:          strings.TrimSpace(input.Name),
		Intent:        input.Intent,
		Zones:         input.Zones,
		BudgetMin:     input.BudgetMin,
		BudgetMax:     input.BudgetMax,
		PropertyTypes: input.PropertyTypes,
		Consent:       input.Consent,
		WeeklyUpdates: true,
		Source:        entity.LeadSource,
		UTMSource:     input.UTMSource,
		UTMMedium:     input.UTMMedium,
		UTMCampaign:   input.UTMCampaign,
		UTMTerm:       input.UTMTerm,
		UTMContent:    input.UTMContent,
		InternalNotes: base.InternalNotes,
		CreatedAt:     base.CreatedAt,
		UpdatedAt:     time.Now(),
	}

	if input.WeeklyUpdates != nil {
		lead.WeeklyUpdates = *input.WeeklyUpdates
	}
	if lead.Zones == nil {
		lead.Zones = []string{}
	}
	if lead.PropertyTypes == nil {
		lead.PropertyTypes = []string{}
	}

	return lead
}

func (uc *SignupLeadUseCase) retryAsUpdate(ctx context.Context, email string, input SignupInput) (*entity.Lead, error) {
	existing, err := uc.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, entity.ErrEmailTaken
	}

	lead := uc.applyInput(existing, input)
	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// enqueueWelcome és fire-and-forget: si el broker falla, el signup
// continua sent un èxit.
func (uc *SignupLeadUseCase) enqueueWelcome(ctx context.Context, lead *entity.Lead) {
	if uc.Queue == nil {
		return
	}

	payload := queue.WelcomePayload{
		LeadID:        lead.ID,
		Email:         lead.Email,
		Name:          lead.Name,
		WeeklyUpdates: lead.WeeklyUpdates,
	}

	if err := uc.Queue.PublishWelcome(ctx, payload); err != nil {
		log.WithError(err).WithField("email", lead.Email).
			Warn("welcome email enqueue failed")
	}
}
