package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/protocol"
)

type createCheckoutArgs struct {
	VariantIDs []string `json:"variant_ids"`
	Quantities []int    `json:"quantities"`
}

// createCheckout creates a cart tagged with the attribution pair. The
// interaction is recorded first so its id can ride along on the cart; the
// same record is updated once the checkout result is known. A crash between
// the two writes leaves an interaction without checkout details, which is
// visible rather than fatal.
func (d *Dispatcher) createCheckout(ctx context.Context, merchant *domain.Merchant, raw json.RawMessage) (protocol.CallResult, error) {
	var args createCheckoutArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return protocol.CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if len(args.VariantIDs) == 0 {
		return protocol.CallResult{}, fmt.Errorf("variant_ids is required")
	}

	lines := make([]domain.CheckoutLine, len(args.VariantIDs))
	for i, variantID := range args.VariantIDs {
		qty := 1
		if i < len(args.Quantities) && args.Quantities[i] > 0 {
			qty = args.Quantities[i]
		}
		lines[i] = domain.CheckoutLine{VariantID: variantID, Quantity: qty}
	}

	interactionID, err := d.recorder.Record(ctx, merchant.Shop, domain.IntentCheckout, "")
	if err != nil {
		return protocol.CallResult{}, err
	}

	result, err := d.catalog.CreateCheckout(ctx, merchant, lines, interactionID)
	if err != nil {
		return protocol.CallResult{}, err
	}

	potentialValue, _ := strconv.ParseFloat(result.Total, 64)
	if err := d.recorder.SetCheckout(ctx, interactionID, result, potentialValue); err != nil {
		return protocol.CallResult{}, err
	}

	return protocol.CallResult{Content: []protocol.ContentBlock{{
		Type: "text",
		Text: fmt.Sprintf("Checkout created. Complete the purchase here: %s (total: %s %s)",
			result.CheckoutURL, result.Total, result.Currency),
		Data: result,
	}}}, nil
}
