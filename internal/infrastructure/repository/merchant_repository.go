package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/infrastructure/repository/entity"
	"shopify-agent-gateway/internal/ports"
)

// MongoMerchantRepository implements MerchantRepository using MongoDB.
type MongoMerchantRepository struct {
	collection *mongo.Collection
}

// NewMongoMerchantRepository creates a new MongoDB merchant repository.
func NewMongoMerchantRepository(db *mongo.Database) *MongoMerchantRepository {
	return &MongoMerchantRepository{
		collection: db.Collection("merchants"),
	}
}

var _ ports.MerchantRepository = (*MongoMerchantRepository)(nil)

// EnsureIndexes creates the unique shop index.
func (r *MongoMerchantRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetByShop retrieves a merchant by shop domain.
func (r *MongoMerchantRepository) GetByShop(ctx context.Context, shop string) (*domain.Merchant, error) {
	var doc entity.MerchantDoc
	err := r.collection.FindOne(ctx, bson.M{"shop": shop}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return doc.ToDomain(), nil
}

// Save creates or updates the merchant document for its shop domain.
func (r *MongoMerchantRepository) Save(ctx context.Context, merchant *domain.Merchant) error {
	merchant.UpdatedAt = time.Now()
	if merchant.InstalledAt.IsZero() {
		merchant.InstalledAt = time.Now()
	}

	update := bson.M{"$set": bson.M{
		"shop":         merchant.Shop,
		"access_token": merchant.AccessToken,
		"scopes":       merchant.Scopes,
		"enabled":      merchant.Enabled,
		"profile":      merchant.Profile,
		"installed_at": merchant.InstalledAt,
		"updated_at":   merchant.UpdatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"shop": merchant.Shop}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save merchant: %w", err)
	}
	return nil
}

// UpdateProfile replaces the profile sub-document for a shop.
func (r *MongoMerchantRepository) UpdateProfile(ctx context.Context, shop string, profile domain.Profile) error {
	update := bson.M{"$set": bson.M{
		"profile":    profile,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"shop": shop}, update)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMerchantNotFound
	}
	return nil
}

// Delete removes the merchant record for a shop.
func (r *MongoMerchantRepository) Delete(ctx context.Context, shop string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"shop": shop})
	if err != nil {
		return fmt.Errorf("failed to delete merchant: %w", err)
	}
	return nil
}
