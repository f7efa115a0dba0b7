package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopify-agent-gateway/internal/domain"
)

// InteractionDoc is the MongoDB representation of an AgentInteraction.
// The ObjectID primary key doubles as the interaction id carried in the
// checkout attribution pair.
type InteractionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Shop           string             `bson:"shop"`
	Intent         string             `bson:"intent"`
	Query          string             `bson:"query,omitempty"`
	CheckoutID     string             `bson:"checkout_id,omitempty"`
	CheckoutURL    string             `bson:"checkout_url,omitempty"`
	PotentialValue float64            `bson:"potential_value,omitempty"`
	OrderID        string             `bson:"order_id,omitempty"`
	OrderValue     float64            `bson:"order_value,omitempty"`
	Converted      bool               `bson:"converted"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// InteractionDocFromDomain converts a domain interaction to its Mongo doc.
func InteractionDocFromDomain(in *domain.AgentInteraction) *InteractionDoc {
	doc := &InteractionDoc{
		Shop:           in.Shop,
		Intent:         in.Intent,
		Query:          in.Query,
		CheckoutID:     in.CheckoutID,
		CheckoutURL:    in.CheckoutURL,
		PotentialValue: in.PotentialValue,
		OrderID:        in.OrderID,
		OrderValue:     in.OrderValue,
		Converted:      in.Converted,
		CreatedAt:      in.CreatedAt,
		UpdatedAt:      in.UpdatedAt,
	}
	if in.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(in.ID); err == nil {
			doc.ID = oid
		}
	}
	return doc
}

// ToDomain converts the Mongo doc back to the domain type.
func (d *InteractionDoc) ToDomain() *domain.AgentInteraction {
	return &domain.AgentInteraction{
		ID:             d.ID.Hex(),
		Shop:           d.Shop,
		Intent:         d.Intent,
		Query:          d.Query,
		CheckoutID:     d.CheckoutID,
		CheckoutURL:    d.CheckoutURL,
		PotentialValue: d.PotentialValue,
		OrderID:        d.OrderID,
		OrderValue:     d.OrderValue,
		Converted:      d.Converted,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
