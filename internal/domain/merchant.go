package domain

import "time"

// Merchant is the per-tenant record: the OAuth session (shop domain plus
// access token) and the agent-facing profile the merchant edits in settings.
// One document per shop domain.
type Merchant struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Shop        string    `json:"shop" bson:"shop"`
	AccessToken string    `json:"-" bson:"access_token"`
	Scopes      []string  `json:"scopes" bson:"scopes"`
	Enabled     bool      `json:"enabled" bson:"enabled"`
	Profile     Profile   `json:"profile" bson:"profile"`
	InstalledAt time.Time `json:"installed_at" bson:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Profile holds the merchant-editable configuration surfaced to agents.
type Profile struct {
	BrandVoice            string  `json:"brand_voice" bson:"brand_voice"`
	ReturnPolicy          string  `json:"return_policy" bson:"return_policy"`
	ShippingPolicy        string  `json:"shipping_policy" bson:"shipping_policy"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold" bson:"free_shipping_threshold"`
}

// DefaultProfile is applied on install, before the merchant has saved settings.
func DefaultProfile() Profile {
	return Profile{
		BrandVoice:   "friendly and helpful",
		ReturnPolicy: "Contact the store for return details.",
	}
}
