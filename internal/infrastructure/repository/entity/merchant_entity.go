package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopify-agent-gateway/internal/domain"
)

// MerchantDoc is the MongoDB representation of a Merchant.
type MerchantDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Shop        string             `bson:"shop"`
	AccessToken string             `bson:"access_token"`
	Scopes      []string           `bson:"scopes"`
	Enabled     bool               `bson:"enabled"`
	Profile     domain.Profile     `bson:"profile"`
	InstalledAt time.Time          `bson:"installed_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// ToDomain converts the Mongo doc back to the domain type.
func (d *MerchantDoc) ToDomain() *domain.Merchant {
	return &domain.Merchant{
		ID:          d.ID.Hex(),
		Shop:        d.Shop,
		AccessToken: d.AccessToken,
		Scopes:      d.Scopes,
		Enabled:     d.Enabled,
		Profile:     d.Profile,
		InstalledAt: d.InstalledAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MissedDoc is the MongoDB representation of a MissedOpportunity row.
type MissedDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Shop       string             `bson:"shop"`
	SearchTerm string             `bson:"search_term"`
	Count      int64              `bson:"count"`
	LastSeen   time.Time          `bson:"last_seen"`
}

// ToDomain converts the Mongo doc back to the domain type.
func (d *MissedDoc) ToDomain() domain.MissedOpportunity {
	return domain.MissedOpportunity{
		ID:         d.ID.Hex(),
		Shop:       d.Shop,
		SearchTerm: d.SearchTerm,
		Count:      d.Count,
		LastSeen:   d.LastSeen,
	}
}
