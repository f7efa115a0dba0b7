package domain

// Product is a normalized view of an upstream product. Not persisted; shaped
// directly from Storefront GraphQL responses.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Handle      string    `json:"handle"`
	ImageURL    string    `json:"image_url,omitempty"`
	PriceMin    string    `json:"price_min"`
	PriceMax    string    `json:"price_max"`
	Currency    string    `json:"currency"`
	Variants    []Variant `json:"variants"`
}

// Variant is a purchasable option of a Product.
type Variant struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SKU       string `json:"sku,omitempty"`
	Price     string `json:"price"`
	Available bool   `json:"available"`
}

// CheckoutResult is the normalized view of an upstream cart, tagged at
// creation with the attribution pair so order webhooks can correlate back.
type CheckoutResult struct {
	CheckoutID    string `json:"checkout_id"`
	CheckoutURL   string `json:"checkout_url"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	InteractionID string `json:"interaction_id"`
}

// CheckoutLine pairs a variant with a quantity for cart creation.
type CheckoutLine struct {
	VariantID string
	Quantity  int
}
