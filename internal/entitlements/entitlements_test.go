package entitlements

import (
	"context"
	"testing"

	"flashdeck/internal/database/models"
	"flashdeck/internal/database/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFoundOrDenied
	}
	return user, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error { panic("unexpected call") }
func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	panic("unexpected call")
}
func (f *fakeUsers) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	panic("unexpected call")
}
func (f *fakeUsers) ResetPassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	panic("unexpected call")
}

func TestPlanProviderFeatures(t *testing.T) {
	proID := uuid.New()
	freeID := uuid.New()
	provider := NewPlanProvider(&fakeUsers{users: map[uuid.UUID]*models.User{
		proID:  {ID: proID, Plan: models.PlanPro},
		freeID: {ID: freeID, Plan: models.PlanFree},
	}})
	ctx := context.Background()

	for _, feature := range []Feature{FeatureAIGeneration, FeatureUnlimitedDecks} {
		has, err := provider.Has(ctx, proID.String(), feature)
		require.NoError(t, err)
		assert.True(t, has, "pro plan should hold %s", feature)

		has, err = provider.Has(ctx, freeID.String(), feature)
		require.NoError(t, err)
		assert.False(t, has, "free plan should not hold %s", feature)
	}
}

func TestPlanProviderUnknownUser(t *testing.T) {
	provider := NewPlanProvider(&fakeUsers{users: map[uuid.UUID]*models.User{}})

	_, err := provider.Has(context.Background(), uuid.NewString(), FeatureAIGeneration)
	assert.ErrorIs(t, err, repositories.ErrNotFoundOrDenied)
}

func TestPlanProviderMalformedIdentity(t *testing.T) {
	provider := NewPlanProvider(&fakeUsers{users: map[uuid.UUID]*models.User{}})

	has, err := provider.Has(context.Background(), "not-a-uuid", FeatureAIGeneration)
	require.NoError(t, err)
	assert.False(t, has)
}
