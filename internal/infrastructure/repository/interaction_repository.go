package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/infrastructure/repository/entity"
	"shopify-agent-gateway/internal/ports"
)

const defaultListLimit = 50

// MongoInteractionRepository implements InteractionRepository using MongoDB.
type MongoInteractionRepository struct {
	interactions *mongo.Collection
	missed       *mongo.Collection
}

// NewMongoInteractionRepository creates a new MongoDB interaction repository.
func NewMongoInteractionRepository(db *mongo.Database) *MongoInteractionRepository {
	return &MongoInteractionRepository{
		interactions: db.Collection("agent_interactions"),
		missed:       db.Collection("missed_opportunities"),
	}
}

var _ ports.InteractionRepository = (*MongoInteractionRepository)(nil)

// EnsureIndexes creates the unique (shop, search_term) index for the
// missed-opportunity counter.
func (r *MongoInteractionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.missed.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}, {Key: "search_term", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert stores a new interaction and returns the minted id.
func (r *MongoInteractionRepository) Insert(ctx context.Context, interaction *domain.AgentInteraction) (string, error) {
	doc := entity.InteractionDocFromDomain(interaction)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.interactions.InsertOne(ctx, doc); err != nil {
		return "", &domain.PersistenceError{Op: "insert interaction", Err: err}
	}
	return doc.ID.Hex(), nil
}

// SetCheckout fills in the checkout fields of a previously inserted interaction.
func (r *MongoInteractionRepository) SetCheckout(ctx context.Context, id, checkoutID, checkoutURL string, potentialValue float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.PersistenceError{Op: "set checkout", Err: fmt.Errorf("invalid interaction id %q: %w", id, err)}
	}

	update := bson.M{"$set": bson.M{
		"checkout_id":     checkoutID,
		"checkout_url":    checkoutURL,
		"potential_value": potentialValue,
		"updated_at":      time.Now(),
	}}
	if _, err := r.interactions.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return &domain.PersistenceError{Op: "set checkout", Err: err}
	}
	return nil
}

// MarkConverted records an order attributed to an interaction.
func (r *MongoInteractionRepository) MarkConverted(ctx context.Context, id, orderID string, orderValue float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.PersistenceError{Op: "mark converted", Err: fmt.Errorf("invalid interaction id %q: %w", id, err)}
	}

	update := bson.M{"$set": bson.M{
		"order_id":    orderID,
		"order_value": orderValue,
		"converted":   true,
		"updated_at":  time.Now(),
	}}
	res, err := r.interactions.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return &domain.PersistenceError{Op: "mark converted", Err: err}
	}
	if res.MatchedCount == 0 {
		return &domain.PersistenceError{Op: "mark converted", Err: fmt.Errorf("interaction %s not found", id)}
	}
	return nil
}

// IncrementMissed atomically increments the (shop, searchTerm) counter.
// A single upsert with $inc avoids lost updates under concurrent identical
// searches; the unique index makes duplicate creation impossible.
func (r *MongoInteractionRepository) IncrementMissed(ctx context.Context, shop, searchTerm string) error {
	filter := bson.M{"shop": shop, "search_term": searchTerm}
	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$set": bson.M{"last_seen": time.Now()},
		"$setOnInsert": bson.M{
			"shop":        shop,
			"search_term": searchTerm,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.missed.UpdateOne(ctx, filter, update, opts); err != nil {
		return &domain.PersistenceError{Op: "increment missed opportunity", Err: err}
	}
	return nil
}

// ListByShop returns a shop's most recent interactions, newest first.
func (r *MongoInteractionRepository) ListByShop(ctx context.Context, shop string, limit int) ([]domain.AgentInteraction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.interactions.Find(ctx, bson.M{"shop": shop}, opts)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list interactions", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []entity.InteractionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.PersistenceError{Op: "list interactions", Err: err}
	}

	interactions := make([]domain.AgentInteraction, 0, len(docs))
	for i := range docs {
		interactions = append(interactions, *docs[i].ToDomain())
	}
	return interactions, nil
}

// ListMissed returns a shop's missed-opportunity rows, highest count first.
func (r *MongoInteractionRepository) ListMissed(ctx context.Context, shop string, limit int) ([]domain.MissedOpportunity, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.missed.Find(ctx, bson.M{"shop": shop}, opts)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list missed opportunities", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []entity.MissedDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.PersistenceError{Op: "list missed opportunities", Err: err}
	}

	rows := make([]domain.MissedOpportunity, 0, len(docs))
	for i := range docs {
		rows = append(rows, docs[i].ToDomain())
	}
	return rows, nil
}

// DeleteByShop removes all interactions and missed-opportunity rows for a shop.
func (r *MongoInteractionRepository) DeleteByShop(ctx context.Context, shop string) error {
	if _, err := r.interactions.DeleteMany(ctx, bson.M{"shop": shop}); err != nil {
		return &domain.PersistenceError{Op: "delete interactions", Err: err}
	}
	if _, err := r.missed.DeleteMany(ctx, bson.M{"shop": shop}); err != nil {
		return &domain.PersistenceError{Op: "delete missed opportunities", Err: err}
	}
	return nil
}
