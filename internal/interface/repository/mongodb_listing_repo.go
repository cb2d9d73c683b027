package repository

import (
	"context"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
	"flightlink-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoListingRepository implements ListingRepository
type MongoListingRepository struct {
	collection *mongo.Collection
}

// NewMongoListingRepository creates a new MongoDB listing repository
func NewMongoListingRepository(db *mongo.Database, logger logger.Logger) repository.ListingRepository {
	collection := db.Collection("flight_listings")

	// Index on searchUrl for per-search lookups
	ctx := context.Background()
	if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"searchUrl": 1},
	}); err != nil {
		logger.Warn("Failed to create flight listing index", "error", err)
	}

	return &MongoListingRepository{
		collection: collection,
	}
}

// Append inserts records in one batch
func (r *MongoListingRepository) Append(ctx context.Context, records []*entity.FlightListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, rec := range records {
		docs = append(docs, listingDoc(rec))
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// Close is a no-op; the client is owned by the caller
func (r *MongoListingRepository) Close() error {
	return nil
}

func listingDoc(rec *entity.FlightListingRecord) bson.M {
	doc := bson.M{
		"searchUrl": rec.SearchURL,
		"price":     rec.Price,
		"outbound":  legDoc(rec.Outbound),
		"scrapedAt": scrapedAt(rec),
	}
	if rec.Return != nil {
		doc["return"] = legDoc(*rec.Return)
	}
	return doc
}

func legDoc(l entity.Leg) bson.M {
	return bson.M{
		"timing":   l.Timing,
		"airline":  l.Airline,
		"stops":    l.Stops,
		"layover":  l.Layover,
		"duration": l.Duration,
	}
}

func scrapedAt(rec *entity.FlightListingRecord) time.Time {
	if rec.ScrapedAt.IsZero() {
		return time.Now().UTC()
	}
	return rec.ScrapedAt.UTC()
}
