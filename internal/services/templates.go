package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

// Templates serves the public template catalog and instantiates
// templates into agents.
type Templates struct {
	db     *gorm.DB
	cache  *cache.Cache
	agents *Agents
	log    zerolog.Logger
}

// NewTemplates creates the template service.
func NewTemplates(db *gorm.DB, c *cache.Cache, agents *Agents, log zerolog.Logger) *Templates {
	return &Templates{db: db, cache: c, agents: agents, log: log}
}

func (s *Templates) scoped(ctx context.Context, category, search string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Template{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return q
}

// List returns the catalog page, most-used templates first.
func (s *Templates) List(ctx context.Context, category, search string, page pagination.Params) ([]models.Template, pagination.Meta, error) {
	var total int64
	if err := s.scoped(ctx, category, search).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	templates := []models.Template{}
	err := s.scoped(ctx, category, search).
		Order("use_count DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&templates).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return templates, pagination.MetaFor(page, total), nil
}

// Get fetches one template. Templates are public and change rarely, so
// reads go through the cache.
func (s *Templates) Get(ctx context.Context, id string) (models.Template, error) {
	var cached models.Template
	if s.cache.Get(ctx, cache.TemplateKey(id), &cached) {
		return cached, nil
	}

	var template models.Template
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Template{}, apperr.NotFound("TEMPLATE_NOT_FOUND", "Template not found")
		}
		return models.Template{}, err
	}

	s.cache.Set(ctx, cache.TemplateKey(id), template, cache.TTLMedium)
	return template, nil
}

// Instantiate copies a template into a new agent owned by the caller and
// records the use.
func (s *Templates) Instantiate(ctx context.Context, userID, templateID string) (models.Agent, error) {
	var template models.Template
	err := s.db.WithContext(ctx).Where("id = ?", templateID).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Agent{}, apperr.NotFound("TEMPLATE_NOT_FOUND", "Template not found")
		}
		return models.Agent{}, err
	}

	agent, err := s.agents.Create(ctx, userID, CreateAgentInput{
		Name:           template.Name,
		Description:    template.Description,
		SystemPrompt:   template.SystemPrompt,
		LLMProvider:    template.LLMProvider,
		LLMModel:       template.LLMModel,
		LLMTemperature: &template.LLMTemperature,
		LLMMaxTokens:   &template.LLMMaxTokens,
		TemplateID:     &template.ID,
	})
	if err != nil {
		return models.Agent{}, err
	}

	err = s.db.WithContext(ctx).Model(&models.Template{}).
		Where("id = ?", templateID).
		UpdateColumn("use_count", gorm.Expr("use_count + ?", 1)).Error
	if err != nil {
		return models.Agent{}, err
	}

	s.cache.Del(ctx, cache.TemplateKey(templateID))
	return agent, nil
}
