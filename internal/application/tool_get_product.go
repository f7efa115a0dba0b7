package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/protocol"
)

type getProductArgs struct {
	Handle string `json:"handle"`
}

// getProduct fetches a single product by handle. An unresolved handle is a
// normal response, not an error.
func (d *Dispatcher) getProduct(ctx context.Context, merchant *domain.Merchant, raw json.RawMessage) (protocol.CallResult, error) {
	var args getProductArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return protocol.CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Handle) == "" {
		return protocol.CallResult{}, fmt.Errorf("handle is required")
	}

	product, err := d.catalog.GetProductByHandle(ctx, merchant, args.Handle)
	if err != nil {
		return protocol.CallResult{}, err
	}

	if _, err := d.recorder.Record(ctx, merchant.Shop, domain.IntentProduct, args.Handle); err != nil {
		return protocol.CallResult{}, err
	}

	if product == nil {
		return protocol.CallResult{Content: []protocol.ContentBlock{{
			Type: "text",
			Text: fmt.Sprintf("Product %q not found.", args.Handle),
		}}}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s %s\n", product.Title, product.PriceMin, product.Currency)
	if product.Description != "" {
		fmt.Fprintf(&b, "%s\n", product.Description)
	}
	for _, v := range product.Variants {
		availability := "in stock"
		if !v.Available {
			availability = "sold out"
		}
		fmt.Fprintf(&b, "- %s: %s %s (%s)\n", v.Title, v.Price, product.Currency, availability)
	}

	return protocol.CallResult{Content: []protocol.ContentBlock{{
		Type: "text",
		Text: strings.TrimRight(b.String(), "\n"),
		Data: product,
	}}}, nil
}
