package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/protocol"
)

type searchProductsArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// searchProducts runs a bounded catalog search. Zero-result searches are
// tracked as missed opportunities before the response is rendered.
func (d *Dispatcher) searchProducts(ctx context.Context, merchant *domain.Merchant, raw json.RawMessage) (protocol.CallResult, error) {
	var args searchProductsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return protocol.CallResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return protocol.CallResult{}, fmt.Errorf("query is required")
	}

	products, err := d.catalog.SearchProducts(ctx, merchant, args.Query, args.Limit)
	if err != nil {
		return protocol.CallResult{}, err
	}

	if _, err := d.recorder.Record(ctx, merchant.Shop, domain.IntentSearch, args.Query); err != nil {
		return protocol.CallResult{}, err
	}

	if len(products) == 0 {
		if err := d.recorder.MarkMissed(ctx, merchant.Shop, args.Query); err != nil {
			return protocol.CallResult{}, err
		}
		return protocol.CallResult{Content: []protocol.ContentBlock{{
			Type: "text",
			Text: fmt.Sprintf("No products found for %q. Try a different search term.", args.Query),
		}}}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d product(s) for %q:\n", len(products), args.Query)
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s - %s %s (handle: %s)\n", i+1, p.Title, p.PriceMin, p.Currency, p.Handle)
	}

	return protocol.CallResult{Content: []protocol.ContentBlock{{
		Type: "text",
		Text: strings.TrimRight(b.String(), "\n"),
		Data: products,
	}}}, nil
}
