package application

import (
	"context"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/protocol"
)

// getStoreInfo renders the merchant's policies and brand information.
func (d *Dispatcher) getStoreInfo(ctx context.Context, merchant *domain.Merchant) (protocol.CallResult, error) {
	if _, err := d.recorder.Record(ctx, merchant.Shop, domain.IntentStoreInfo, ""); err != nil {
		return protocol.CallResult{}, err
	}

	return protocol.CallResult{Content: []protocol.ContentBlock{{
		Type: "text",
		Text: renderStoreContext(merchant),
		Data: map[string]any{
			"shop":                    merchant.Shop,
			"brand_voice":             merchant.Profile.BrandVoice,
			"return_policy":           merchant.Profile.ReturnPolicy,
			"shipping_policy":         merchant.Profile.ShippingPolicy,
			"free_shipping_threshold": merchant.Profile.FreeShippingThreshold,
		},
	}}}, nil
}
