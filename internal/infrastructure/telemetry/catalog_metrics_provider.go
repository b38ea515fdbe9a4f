// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormCatalogMetricsProvider implements CatalogMetricsProvider using GORM.
// It queries the models and users tables directly for aggregated metrics.
type GormCatalogMetricsProvider struct {
	db *gorm.DB
}

// NewGormCatalogMetricsProvider creates a new GormCatalogMetricsProvider.
func NewGormCatalogMetricsProvider(db *gorm.DB) *GormCatalogMetricsProvider {
	return &GormCatalogMetricsProvider{db: db}
}

// CountModelsByCategory returns the listed model count per category.
func (p *GormCatalogMetricsProvider) CountModelsByCategory(ctx context.Context) (map[string]int64, error) {
	type result struct {
		Category string `gorm:"column:category"`
		Count    int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("models").
		Select("category, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("category").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Category] = r.Count
	}

	return m, nil
}

// CountActiveUsers returns the number of active user accounts.
func (p *GormCatalogMetricsProvider) CountActiveUsers(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("users").
		Where("deleted_at IS NULL AND status = ?", "active").
		Count(&count).Error

	return count, err
}
