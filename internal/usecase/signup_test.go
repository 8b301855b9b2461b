package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smartplaces/community-api/internal/entity"
	"github.com/smartplaces/community-api/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishWelcome(ctx context.Context, payload queue.WelcomePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func validInput() SignupInput {
	return SignupInput{
		Email:   "a@b.com",
		Intent:  "Compra",
		Consent: true,
	}
}

func TestSignupCreatesLeadWithDefaults(t *testing.T) {
	repo := new(MockLeadRepository)
	producer := new(MockQueueProducer)

	repo.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, nil)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Email == "a@b.com" &&
			l.WeeklyUpdates &&
			l.Source == entity.LeadSource &&
			l.InternalNotes == nil
	})).Return(nil)
	producer.On("PublishWelcome", mock.Anything, mock.Anything).Return(nil)

	uc := NewSignupLeadUseCase(repo, allowAll{}, producer)
	output, err := uc.Execute(context.Background(), "1.2.3.4", validInput())

	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", output.Email)
	assert.True(t, output.WeeklyUpdates)
	assert.NotEmpty(t, output.ID)
	repo.AssertExpectations(t)
	producer.AssertNumberOfCalls(t, "PublishWelcome", 1)
}

func TestSignupNormalizesEmail(t *testing.T) {
	repo := new(MockLeadRepository)

	repo.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	uc := NewSignupLeadUseCase(repo, allowAll{}, nil)
	input := validInput()
	input.Email = "  User@Example.COM "

	output, err := uc.Execute(context.Background(), "1.2.3.4", input)

	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", output.Email)
	repo.AssertCalled(t, "FindByEmail", mock.Anything, "user@example.com")
}

func TestSignupUpdatePreservesInternalNotes(t *testing.T) {
	notes := "Trucar dimarts. Prefereix àtic."
	existing := &entity.Lead{
		ID:            "lead-1",
		Email:         "a@b.com",
		Name:          "Nom Antic",
		Intent:        "Lloguer",
		InternalNotes: &notes,
	}

	repo := new(MockLeadRepository)
	repo.On("FindByEmail", mock.Anything, "a@b.com").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.ID == "lead-1" &&
			l.Name == "Nom Nou" &&
			l.Intent == "Compra" &&
			l.InternalNotes != nil && *l.InternalNotes == notes
	})).Return(nil)

	uc := NewSignupLeadUseCase(repo, allowAll{}, nil)
	input := validInput()
	input.Name = "Nom Nou"

	output, err := uc.Execute(context.Background(), "1.2.3.4", input)

	assert.NoError(t, err)
	assert.Equal(t, "lead-1", output.ID)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSignupThrottled(t *testing.T) {
	repo := new(MockLeadRepository)

	uc := NewSignupLeadUseCase(repo, denyAll{}, nil)
	output, err := uc.Execute(context.Background(), "1.2.3.4", validInput())

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrThrottled)
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestSignupValidationFailureSkipsStore(t *testing.T) {
	repo := new(MockLeadRepository)

	uc := NewSignupLeadUseCase(repo, allowAll{}, nil)
	output, err := uc.Execute(context.Background(), "1.2.3.4", SignupInput{Email: "bad-email"})

	assert.Nil(t, output)

	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Error(), "Format d'email no vàlid")
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestSignupWeeklyUpdatesOptOut(t *testing.T) {
	repo := new(MockLeadRepository)
	producer := new(MockQueueProducer)

	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	uc := NewSignupLeadUseCase(repo, allowAll{}, producer)
	optOut := false
	input := validInput()
	input.WeeklyUpdates = &optOut

	output, err := uc.Execute(context.Background(), "1.2.3.4", input)

	assert.NoError(t, err)
	assert.False(t, output.WeeklyUpdates)
	producer.AssertNotCalled(t, "PublishWelcome", mock.Anything, mock.Anything)
}

func TestSignupQueueFailureDoesNotFailRequest(t *testing.T) {
	repo := new(MockLeadRepository)
	producer := new(MockQueueProducer)

	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	producer.On("PublishWelcome", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewSignupLeadUseCase(repo, allowAll{}, producer)
	output, err := uc.Execute(context.Background(), "1.2.3.4", validInput())

	assert.NoError(t, err)
	assert.NotNil(t, output)
}

func TestSignupInsertRaceRetriesAsUpdate(t *testing.T) {
	existing := &entity.Lead{ID: "lead-raced", Email: "a@b.com"}

	repo := new(MockLeadRepository)
	// Primera cerca: buit. La inserció xoca amb l'índex únic perquè
	// una submissió paral·lela ha guanyat; la segona cerca ja el troba.
	repo.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, nil).Once()
	repo.On("Insert", mock.Anything, mock.Anything).Return(entity.ErrEmailTaken)
	repo.On("FindByEmail", mock.Anything, "a@b.com").Return(existing, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	uc := NewSignupLeadUseCase(repo, allowAll{}, nil)
	output, err := uc.Execute(context.Background(), "1.2.3.4", validInput())

	assert.NoError(t, err)
	assert.Equal(t, "lead-raced", output.ID)
	repo.AssertExpectations(t)
}

func TestSignupStoreFailureIsTechnical(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	uc := NewSignupLeadUseCase(repo, allowAll{}, nil)
	output, err := uc.Execute(context.Background(), "1.2.3.4", validInput())

	assert.Nil(t, output)

	var terr *TechnicalError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, "Error creant el registre", terr.Message)
}
