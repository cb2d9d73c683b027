package repository

import (
	"context"
	"fmt"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"

	"gorm.io/gorm"
)

// CapturedLinkModel GORM model for the link log
type CapturedLinkModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	RunID     string `gorm:"column:run_id;index"`
	SourceID  string `gorm:"column:source_id"`
	Route     string `gorm:"column:route"`
	URL       string `gorm:"column:url"`
	OriginURL string `gorm:"column:origin_url"`
	Status    string `gorm:"column:status;index"`
	Reason    string `gorm:"column:reason"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (CapturedLinkModel) TableName() string {
	return "t_captured_links"
}

func newCapturedLinkModel(id int64, link *entity.CapturedLink) CapturedLinkModel {
	return CapturedLinkModel{
		ID:        id,
		RunID:     link.RunID,
		SourceID:  link.SourceID,
		Route:     link.Route,
		URL:       link.URL,
		OriginURL: link.OriginURL,
		Status:    string(link.Status),
		Reason:    link.Reason,
		CreatedAt: link.CreatedAt,
	}
}

func (m CapturedLinkModel) toEntity() *entity.CapturedLink {
	return &entity.CapturedLink{
		ID:        m.ID,
		RunID:     m.RunID,
		SourceID:  m.SourceID,
		Route:     m.Route,
		URL:       m.URL,
		OriginURL: m.OriginURL,
		Status:    entity.LinkStatus(m.Status),
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}

// GormLinkRepository implements LinkRepository on PostgreSQL
type GormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a new GORM link repository and migrates its table
func NewGormLinkRepository(db *gorm.DB) (repository.LinkRepository, error) {
	if err := db.AutoMigrate(&CapturedLinkModel{}); err != nil {
		return nil, fmt.Errorf("migrate captured links: %w", err)
	}
	return &GormLinkRepository{db: db}, nil
}

// Append assigns max(id)+1 under a table lock and inserts link
func (r *GormLinkRepository) Append(ctx context.Context, link *entity.CapturedLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("LOCK TABLE t_captured_links IN EXCLUSIVE MODE").Error; err != nil {
			return err
		}

		var next int64
		if err := tx.Model(&CapturedLinkModel{}).
			Select("COALESCE(MAX(id) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}

		model := newCapturedLinkModel(next, link)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		link.ID = next
		return nil
	})
}

// List returns every link ordered by id
func (r *GormLinkRepository) List(ctx context.Context) ([]*entity.CapturedLink, error) {
	var rows []CapturedLinkModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	// Convert GORM models to domain entities
	links := make([]*entity.CapturedLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, row.toEntity())
	}
	return links, nil
}

// Close is a no-op; the pool is owned by the caller
func (r *GormLinkRepository) Close() error {
	return nil
}
