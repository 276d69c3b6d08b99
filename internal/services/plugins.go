package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

// Plugins serves the marketplace catalog. Plugin execution is out of
// scope; the catalog only exposes listing and lookup.
type Plugins struct {
	db    *gorm.DB
	cache *cache.Cache
	log   zerolog.Logger
}

// NewPlugins creates the plugin service.
func NewPlugins(db *gorm.DB, c *cache.Cache, log zerolog.Logger) *Plugins {
	return &Plugins{db: db, cache: c, log: log}
}

func (s *Plugins) scoped(ctx context.Context, category string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Plugin{}).Where("is_enabled = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	return q
}

// List returns a page of enabled plugins.
func (s *Plugins) List(ctx context.Context, category string, page pagination.Params) ([]models.Plugin, pagination.Meta, error) {
	var total int64
	if err := s.scoped(ctx, category).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	plugins := []models.Plugin{}
	err := s.scoped(ctx, category).
		Order("name ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&plugins).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return plugins, pagination.MetaFor(page, total), nil
}

// Get fetches one plugin.
func (s *Plugins) Get(ctx context.Context, id string) (models.Plugin, error) {
	var cached models.Plugin
	if s.cache.Get(ctx, cache.PluginKey(id), &cached) {
		return cached, nil
	}

	var plugin models.Plugin
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&plugin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Plugin{}, apperr.NotFound("PLUGIN_NOT_FOUND", "Plugin not found")
		}
		return models.Plugin{}, err
	}

	s.cache.Set(ctx, cache.PluginKey(id), plugin, cache.TTLLong)
	return plugin, nil
}
