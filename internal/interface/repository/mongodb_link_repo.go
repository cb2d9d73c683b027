package repository

import (
	"context"
	"fmt"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
	"flightlink-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const linkSequence = "captured_links"

// mongoLink is the stored document of a captured link
type mongoLink struct {
	ID        int64  `bson:"_id"`
	RunID     string `bson:"runId"`
	SourceID  string `bson:"sourceId"`
	Route     string `bson:"route"`
	URL       string `bson:"url"`
	OriginURL string `bson:"originUrl"`
	Status    string `bson:"status"`
	Reason    string `bson:"reason,omitempty"`
	CreatedAt int64  `bson:"createdAt"`
}

func newMongoLink(id int64, link *entity.CapturedLink) mongoLink {
	return mongoLink{
		ID:        id,
		RunID:     link.RunID,
		SourceID:  link.SourceID,
		Route:     link.Route,
		URL:       link.URL,
		OriginURL: link.OriginURL,
		Status:    string(link.Status),
		Reason:    link.Reason,
		CreatedAt: link.CreatedAt.UnixMilli(),
	}
}

func (d mongoLink) toEntity() *entity.CapturedLink {
	return &entity.CapturedLink{
		ID:        d.ID,
		RunID:     d.RunID,
		SourceID:  d.SourceID,
		Route:     d.Route,
		URL:       d.URL,
		OriginURL: d.OriginURL,
		Status:    entity.LinkStatus(d.Status),
		Reason:    d.Reason,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
	}
}

// MongoLinkRepository implements LinkRepository with a counter document for ids
type MongoLinkRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewMongoLinkRepository creates a new MongoDB link repository
func NewMongoLinkRepository(db *mongo.Database, logger logger.Logger) repository.LinkRepository {
	collection := db.Collection("captured_links")

	// Create indexes for run lookups and status scans
	ctx := context.Background()
	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"runId": 1}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: 1}}},
	}); err != nil {
		logger.Warn("Failed to create captured link indexes", "error", err)
	}

	return &MongoLinkRepository{
		collection: collection,
		counters:   db.Collection("counters"),
	}
}

// Append reserves the next id from the counter and inserts link
func (r *MongoLinkRepository) Append(ctx context.Context, link *entity.CapturedLink) error {
	id, err := nextSequence(ctx, r.counters, linkSequence)
	if err != nil {
		return fmt.Errorf("reserve link id: %w", err)
	}

	if _, err := r.collection.InsertOne(ctx, newMongoLink(id, link)); err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	link.ID = id
	return nil
}

// List returns every link ordered by id
func (r *MongoLinkRepository) List(ctx context.Context) ([]*entity.CapturedLink, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoLink
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	links := make([]*entity.CapturedLink, 0, len(docs))
	for _, d := range docs {
		links = append(links, d.toEntity())
	}
	return links, nil
}

// Close is a no-op; the client is owned by the caller
func (r *MongoLinkRepository) Close() error {
	return nil
}

func nextSequence(ctx context.Context, counters *mongo.Collection, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return idFromSequence(counter.Seq), nil
}

// idFromSequence maps the counter value after $inc, which starts at 1, to a
// zero-based id
func idFromSequence(seq int64) int64 {
	return seq - 1
}
