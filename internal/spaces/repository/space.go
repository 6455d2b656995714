// Package repository exposes the space catalog to the booking core.
// The collection is owned by the catalog service; everything here is
// read-only.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacebook/pkg/config"
	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/model"
)

const CollectionName = "Spaces"

type SpaceRepository interface {
	// FindBookable returns the space only when it exists and is
	// active. Missing and inactive spaces are indistinguishable to
	// callers: both are NotFound.
	FindBookable(ctx context.Context, id string) (*model.Space, error)
	// OwnedSpaceIDs lists the ids of every space owned by ownerID,
	// active or not. Used to scope owner listings and stats.
	OwnedSpaceIDs(ctx context.Context, ownerID string) ([]string, error)
}

type mongoSpaceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSpaceRepository(cfg *config.Config) SpaceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpaceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSpaceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSpaceRepository) FindBookable(ctx context.Context, id string) (*model.Space, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Space", id)
	}

	filter := bson.M{"_id": objectID, "is_active": true}

	var space model.Space
	if err := r.collection.FindOne(ctx, filter).Decode(&space); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundWithID("Space", id)
		}
		return nil, fmt.Errorf("failed to find space: %w", err)
	}

	return &space, nil
}

func (r *mongoSpaceRepository) OwnedSpaceIDs(ctx context.Context, ownerID string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned spaces: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode owned spaces: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID.Hex())
	}
	return ids, nil
}
