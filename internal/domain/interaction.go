package domain

import "time"

// Intent labels recorded per tool invocation.
const (
	IntentSearch    = "search"
	IntentProduct   = "product_detail"
	IntentCheckout  = "checkout"
	IntentStoreInfo = "store_info"
)

// AttributionSource is the value written into the checkout's `_source` cart
// attribute so order webhooks can recognize agent-driven purchases.
const AttributionSource = "agent-gateway"

// AgentInteraction is one row per tool invocation. Checkout interactions are
// written in two phases: inserted first to mint the id carried in the cart's
// attribution attributes, then updated with the checkout outcome. Order
// webhooks later set the conversion fields.
type AgentInteraction struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Shop           string    `json:"shop" bson:"shop"`
	Intent         string    `json:"intent" bson:"intent"`
	Query          string    `json:"query,omitempty" bson:"query,omitempty"`
	CheckoutID     string    `json:"checkout_id,omitempty" bson:"checkout_id,omitempty"`
	CheckoutURL    string    `json:"checkout_url,omitempty" bson:"checkout_url,omitempty"`
	PotentialValue float64   `json:"potential_value,omitempty" bson:"potential_value,omitempty"`
	OrderID        string    `json:"order_id,omitempty" bson:"order_id,omitempty"`
	OrderValue     float64   `json:"order_value,omitempty" bson:"order_value,omitempty"`
	Converted      bool      `json:"converted" bson:"converted"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// MissedOpportunity counts searches that returned no catalog matches,
// keyed uniquely by (shop, search_term).
type MissedOpportunity struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Shop       string    `json:"shop" bson:"shop"`
	SearchTerm string    `json:"search_term" bson:"search_term"`
	Count      int64     `json:"count" bson:"count"`
	LastSeen   time.Time `json:"last_seen" bson:"last_seen"`
}
