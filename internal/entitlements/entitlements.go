// Package entitlements answers capability questions about a user's plan.
// The rest of the codebase only ever asks "does this user have feature X";
// how plans map to features stays in here.
package entitlements

import (
	"context"
	"fmt"

	"flashdeck/internal/database/models"
	"flashdeck/internal/database/repositories"

	"github.com/google/uuid"
)

type Feature string

const (
	FeatureAIGeneration   Feature = "ai_flashcard_generation"
	FeatureUnlimitedDecks Feature = "unlimited_decks"
)

// FreeDeckLimit is the number of decks a free-plan user may hold.
const FreeDeckLimit = 3

// DeniedError carries the missing feature so the handler can point the
// user at the upgrade path; it is distinct from an ownership denial.
type DeniedError struct {
	Feature Feature
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("feature %q requires a Pro subscription", e.Feature)
}

type Provider interface {
	Has(ctx context.Context, userID string, feature Feature) (bool, error)
}

var planFeatures = map[string]map[Feature]bool{
	models.PlanFree: {},
	models.PlanPro: {
		FeatureAIGeneration:   true,
		FeatureUnlimitedDecks: true,
	},
}

// PlanProvider resolves features from the user's stored plan.
type PlanProvider struct {
	users repositories.UserRepository
}

func NewPlanProvider(users repositories.UserRepository) *PlanProvider {
	return &PlanProvider{users: users}
}

func (p *PlanProvider) Has(ctx context.Context, userID string, feature Feature) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	user, err := p.users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return planFeatures[user.Plan][feature], nil
}
