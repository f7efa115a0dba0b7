package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/ports"
)

// AppUninstalledHandler cascades tenant cleanup on uninstall: merchant
// record (session plus profile), interactions, and missed-opportunity rows.
type AppUninstalledHandler struct {
	merchants    ports.MerchantRepository
	interactions ports.InteractionRepository
	logger       zerolog.Logger
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler.
func NewAppUninstalledHandler(
	merchants ports.MerchantRepository,
	interactions ports.InteractionRepository,
	logger zerolog.Logger,
) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		merchants:    merchants,
		interactions: interactions,
		logger:       logger,
	}
}

// CanHandle returns true for uninstall events.
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle deletes all tenant state for the uninstalled shop.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shop := event.Shop
	if shop == "" {
		var payload struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err == nil {
			if payload.MyshopifyDomain != "" {
				shop = payload.MyshopifyDomain
			} else {
				shop = payload.Domain
			}
		}
	}
	if shop == "" {
		h.logger.Warn().Msg("App uninstalled event without shop domain, skipping cleanup")
		return nil
	}

	if err := h.interactions.DeleteByShop(ctx, shop); err != nil {
		return err
	}
	if err := h.merchants.Delete(ctx, shop); err != nil {
		return err
	}

	h.logger.Info().
		Str("shop", shop).
		Msg("App uninstalled, tenant state removed")
	return nil
}
