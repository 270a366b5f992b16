package ai

import (
	"context"
	"fmt"

	"flashdeck/internal/database/dto"
)

// Disabled stands in when no API key is configured. Every call fails as
// a credentials error instead of reaching the network.
type Disabled struct{}

func (Disabled) GenerateDeckCards(ctx context.Context, prompt string) ([]dto.CardContent, error) {
	return nil, fmt.Errorf("%w: OPENAI_API_KEY not configured", ErrUpstreamCredentials)
}
