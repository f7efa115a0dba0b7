package ports

import (
	"context"

	"shopify-agent-gateway/internal/domain"
)

// MerchantRepository defines persistence for merchant sessions and profiles.
type MerchantRepository interface {
	// GetByShop retrieves a merchant by shop domain. Returns (nil, nil) when
	// the shop is not installed.
	GetByShop(ctx context.Context, shop string) (*domain.Merchant, error)

	// Save creates or updates the merchant document for its shop domain.
	Save(ctx context.Context, merchant *domain.Merchant) error

	// UpdateProfile replaces the profile sub-document for a shop.
	UpdateProfile(ctx context.Context, shop string, profile domain.Profile) error

	// Delete removes the merchant record for a shop.
	Delete(ctx context.Context, shop string) error
}

// InteractionRepository defines persistence for agent interactions and
// missed-opportunity counters.
type InteractionRepository interface {
	// Insert stores a new interaction and returns the minted id.
	Insert(ctx context.Context, interaction *domain.AgentInteraction) (string, error)

	// SetCheckout fills in the checkout fields of a previously inserted
	// interaction (second phase of the checkout write).
	SetCheckout(ctx context.Context, id, checkoutID, checkoutURL string, potentialValue float64) error

	// MarkConverted records an order attributed to an interaction.
	MarkConverted(ctx context.Context, id, orderID string, orderValue float64) error

	// IncrementMissed atomically increments the (shop, searchTerm) counter,
	// creating the row on first occurrence.
	IncrementMissed(ctx context.Context, shop, searchTerm string) error

	// ListByShop returns the most recent interactions for a shop, newest
	// first, bounded by limit.
	ListByShop(ctx context.Context, shop string, limit int) ([]domain.AgentInteraction, error)

	// ListMissed returns a shop's missed-opportunity rows ordered by count
	// descending, bounded by limit.
	ListMissed(ctx context.Context, shop string, limit int) ([]domain.MissedOpportunity, error)

	// DeleteByShop removes all interactions and missed-opportunity rows for a
	// shop (uninstall cleanup).
	DeleteByShop(ctx context.Context, shop string) error
}
