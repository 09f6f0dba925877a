package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"llavedesol/internal/domain/donation"
)

// PreferenceCreator defines the backend interface needed by Donate.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, p donation.Pledge) (string, error)
}

// DonateDeps holds dependencies for Donate.
type DonateDeps struct {
	Backend PreferenceCreator
}

// ExecuteDonate creates a payment preference and returns the checkout URL.
// PRE: none
// POST: the pledge is normalized before it reaches the backend
func ExecuteDonate(ctx context.Context, input donation.Pledge, deps DonateDeps) (string, error) {
	input.Normalize()
	pref, err := deps.Backend.CreatePreference(ctx, input)
	if err != nil {
		return "", fmt.Errorf("create preference: %w", err)
	}
	slog.Info("donation_event", "event", "preference_created", "preference_id", pref, "amount", input.Amount)
	return donation.CheckoutURL(pref), nil
}
