package ports

import (
	"context"

	"shopify-agent-gateway/internal/domain"
)

// CatalogClient defines the outbound commerce platform operations used by the
// tool handlers. Implementations do not retry: the upstream cart mutation is
// not guaranteed idempotent.
type CatalogClient interface {
	// SearchProducts returns up to limit products matching the query text.
	// The result is empty, never nil-as-error, when nothing matches.
	SearchProducts(ctx context.Context, merchant *domain.Merchant, query string, limit int) ([]domain.Product, error)

	// GetProductByHandle returns (nil, nil) when the handle does not resolve.
	GetProductByHandle(ctx context.Context, merchant *domain.Merchant, handle string) (*domain.Product, error)

	// CreateCheckout creates a cart for the given lines, tagged with the
	// attribution pair derived from interactionID.
	CreateCheckout(ctx context.Context, merchant *domain.Merchant, lines []domain.CheckoutLine, interactionID string) (*domain.CheckoutResult, error)
}
