package repository

import (
	"context"
	"fmt"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"

	"gorm.io/gorm"
)

// FlightListingModel GORM model for the listing table
type FlightListingModel struct {
	ID               uint   `gorm:"primaryKey"`
	SearchURL        string `gorm:"column:search_url;index"`
	Price            string `gorm:"column:price"`
	OutboundTiming   string `gorm:"column:outbound_timing"`
	OutboundAirline  string `gorm:"column:outbound_airline"`
	OutboundStops    string `gorm:"column:outbound_stops"`
	OutboundLayover  string `gorm:"column:outbound_layover_airport"`
	OutboundDuration string `gorm:"column:outbound_total_duration"`
	HasReturn        bool   `gorm:"column:has_return"`
	ReturnTiming     string `gorm:"column:return_timing"`
	ReturnAirline    string `gorm:"column:return_airline"`
	ReturnStops      string `gorm:"column:return_stops"`
	ReturnLayover    string `gorm:"column:return_layover_airport"`
	ReturnDuration   string `gorm:"column:return_total_duration"`
	ScrapedAt        time.Time
}

// TableName overrides the default table name
func (FlightListingModel) TableName() string {
	return "t_flight_listings"
}

func newFlightListingModel(rec *entity.FlightListingRecord) FlightListingModel {
	m := FlightListingModel{
		SearchURL:        rec.SearchURL,
		Price:            rec.Price,
		OutboundTiming:   rec.Outbound.Timing,
		OutboundAirline:  rec.Outbound.Airline,
		OutboundStops:    rec.Outbound.Stops,
		OutboundLayover:  rec.Outbound.Layover,
		OutboundDuration: rec.Outbound.Duration,
		ScrapedAt:        rec.ScrapedAt,
	}
	if rec.Return != nil {
		m.HasReturn = true
		m.ReturnTiming = rec.Return.Timing
		m.ReturnAirline = rec.Return.Airline
		m.ReturnStops = rec.Return.Stops
		m.ReturnLayover = rec.Return.Layover
		m.ReturnDuration = rec.Return.Duration
	}
	return m
}

// GormListingRepository implements ListingRepository on PostgreSQL
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GORM listing repository and migrates its table
func NewGormListingRepository(db *gorm.DB) (repository.ListingRepository, error) {
	if err := db.AutoMigrate(&FlightListingModel{}); err != nil {
		return nil, fmt.Errorf("migrate flight listings: %w", err)
	}
	return &GormListingRepository{db: db}, nil
}

// Append inserts records in batches
func (r *GormListingRepository) Append(ctx context.Context, records []*entity.FlightListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]FlightListingModel, 0, len(records))
	for _, rec := range records {
		models = append(models, newFlightListingModel(rec))
	}

	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

// Close is a no-op; the pool is owned by the caller
func (r *GormListingRepository) Close() error {
	return nil
}
