package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/application"
	"shopify-agent-gateway/internal/domain"
)

// OrderHandler attributes created orders back to the agent interaction that
// produced their checkout. Orders without the attribution pair are ignored:
// they were not agent-driven.
type OrderHandler struct {
	recorder *application.InteractionRecorder
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler.
func NewOrderHandler(recorder *application.InteractionRecorder, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{recorder: recorder, logger: logger}
}

// CanHandle returns true for order creation events.
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == "orders/create"
}

type orderPayload struct {
	ID             json.Number `json:"id"`
	TotalPrice     string      `json:"total_price"`
	NoteAttributes []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"note_attributes"`
}

// Handle marks the referenced interaction as converted. Failures (including
// an order referencing an unknown interaction id) are returned to the
// dispatcher, which logs and swallows them.
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var order orderPayload
	if err := json.Unmarshal(event.Payload, &order); err != nil {
		return fmt.Errorf("failed to parse order webhook payload: %w", err)
	}

	var source, interactionID string
	for _, attr := range order.NoteAttributes {
		switch attr.Name {
		case "_source":
			source = attr.Value
		case "_interaction_id":
			interactionID = attr.Value
		}
	}

	if source != domain.AttributionSource || interactionID == "" {
		h.logger.Debug().
			Str("shop", event.Shop).
			Str("orderId", order.ID.String()).
			Msg("Order not agent-attributed, skipping")
		return nil
	}

	orderValue, _ := strconv.ParseFloat(order.TotalPrice, 64)
	if err := h.recorder.AttributeConversion(ctx, interactionID, order.ID.String(), orderValue); err != nil {
		return fmt.Errorf("failed to attribute order %s: %w", order.ID.String(), err)
	}

	h.logger.Info().
		Str("shop", event.Shop).
		Str("orderId", order.ID.String()).
		Str("interactionId", interactionID).
		Msg("Order attributed to agent interaction")
	return nil
}
