package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/bradykim7/whobot/internal/models"
)

const aliasCollection = "person_aliases"

// AliasRepository handles persistence for person aliases. The (alias,
// user_id) pair is the unit of uniqueness: one alias may point at several
// users, and one user may carry several aliases.
type AliasRepository struct {
	db  *MongoDB
	log *zap.Logger
}

// NewAliasRepository creates a new alias repository
func NewAliasRepository(db *MongoDB, log *zap.Logger) *AliasRepository {
	return &AliasRepository{
		db:  db,
		log: log.Named("alias-repository"),
	}
}

// EnsureIndexes creates the pair-uniqueness index.
func (r *AliasRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(aliasCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "alias", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create alias index: %w", err)
	}
	return nil
}

// List returns every alias pair, the full snapshot the cache is rebuilt
// from on refresh.
func (r *AliasRepository) List(ctx context.Context) ([]models.PersonAlias, error) {
	cursor, err := r.db.Collection(aliasCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer cursor.Close(ctx)

	var aliases []models.PersonAlias
	if err := cursor.All(ctx, &aliases); err != nil {
		return nil, fmt.Errorf("failed to decode aliases: %w", err)
	}
	return aliases, nil
}

// Add inserts one alias pair. Reports false without error when the exact
// pair already exists.
func (r *AliasRepository) Add(ctx context.Context, alias *models.PersonAlias) (bool, error) {
	_, err := r.db.Collection(aliasCollection).InsertOne(ctx, alias)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert alias: %w", err)
	}
	r.log.Info("alias added",
		zap.String("alias", alias.Alias),
		zap.String("user_id", alias.UserID))
	return true, nil
}

// Remove deletes one alias pair. Reports false without error when the pair
// did not exist.
func (r *AliasRepository) Remove(ctx context.Context, alias, userID string) (bool, error) {
	res, err := r.db.Collection(aliasCollection).DeleteOne(ctx, bson.M{
		"alias":   alias,
		"user_id": userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete alias: %w", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	r.log.Info("alias removed",
		zap.String("alias", alias),
		zap.String("user_id", userID))
	return true, nil
}
