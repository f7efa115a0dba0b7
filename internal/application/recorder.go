package application

import (
	"context"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/ports"
)

// InteractionRecorder persists a log entry per tool invocation and tracks
// zero-result searches as missed opportunities.
type InteractionRecorder struct {
	repo   ports.InteractionRepository
	logger zerolog.Logger
}

// NewInteractionRecorder creates a new recorder.
func NewInteractionRecorder(repo ports.InteractionRepository, logger zerolog.Logger) *InteractionRecorder {
	return &InteractionRecorder{repo: repo, logger: logger}
}

// Record stores a new interaction and returns the minted id used for later
// attribution correlation.
func (r *InteractionRecorder) Record(ctx context.Context, shop, intent, query string) (string, error) {
	id, err := r.repo.Insert(ctx, &domain.AgentInteraction{
		Shop:   shop,
		Intent: intent,
		Query:  query,
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug().
		Str("shop", shop).
		Str("intent", intent).
		Str("interactionId", id).
		Msg("Recorded agent interaction")
	return id, nil
}

// SetCheckout updates a previously recorded interaction with the checkout
// outcome (second phase of the checkout write).
func (r *InteractionRecorder) SetCheckout(ctx context.Context, id string, result *domain.CheckoutResult, potentialValue float64) error {
	return r.repo.SetCheckout(ctx, id, result.CheckoutID, result.CheckoutURL, potentialValue)
}

// MarkMissed increments the (shop, searchTerm) counter, creating the row on
// first occurrence. The underlying write is a keyed upsert, safe under
// concurrent identical searches.
func (r *InteractionRecorder) MarkMissed(ctx context.Context, shop, searchTerm string) error {
	if err := r.repo.IncrementMissed(ctx, shop, searchTerm); err != nil {
		return err
	}
	r.logger.Info().
		Str("shop", shop).
		Str("searchTerm", searchTerm).
		Msg("Recorded missed opportunity")
	return nil
}

// AttributeConversion marks the interaction as converted with the order it
// produced. Invoked from the order webhook handler.
func (r *InteractionRecorder) AttributeConversion(ctx context.Context, interactionID, orderID string, orderValue float64) error {
	if err := r.repo.MarkConverted(ctx, interactionID, orderID, orderValue); err != nil {
		return err
	}
	r.logger.Info().
		Str("interactionId", interactionID).
		Str("orderId", orderID).
		Float64("orderValue", orderValue).
		Msg("Attributed order to agent interaction")
	return nil
}
