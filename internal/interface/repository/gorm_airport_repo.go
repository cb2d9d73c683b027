package repository

import (
	"context"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository reads the IATA reference set from the airport master table
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Timezonelist GORM model of the airport master table
type Timezonelist struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

// LoadCodes returns every active airport code
func (r *GormAirportRepository) LoadCodes(ctx context.Context) (entity.AirportSet, error) {
	var codes []string
	result := r.db.WithContext(ctx).
		Model(&Timezonelist{}).
		Where("airportcode <> ''").
		Pluck("airportcode", &codes)
	if result.Error != nil {
		return nil, result.Error
	}

	return entity.NewAirportSet(codes), nil
}
