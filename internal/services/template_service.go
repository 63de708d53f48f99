package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"macromate/internal/cache"
	"macromate/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TemplateCacheKey holds all templates as a JSON object keyed by category.
const TemplateCacheKey = "templates"

// Template/category errors
var (
	ErrCategoryRequired = errors.New("category is required")
	ErrTemplateRequired = errors.New("template is required")
	ErrUnknownCategory  = errors.New("unknown category")
)

// TemplateService QA 评分模板服务
type TemplateService struct {
	db         *gorm.DB
	cache      cache.Store
	dimensions []string
	maxScore   float64
	logger     *logrus.Logger
}

// NewTemplateService creates the service. dimensions and maxScore define the
// default scoring criteria attached to newly created templates.
func NewTemplateService(db *gorm.DB, cacheStore cache.Store, dimensions []string, maxScore float64, logger *logrus.Logger) *TemplateService {
	if logger == nil {
		logger = logrus.New()
	}
	if len(dimensions) == 0 {
		dimensions = []string{"tone", "process", "empathy"}
	}
	if maxScore <= 0 {
		maxScore = 10
	}
	return &TemplateService{db: db, cache: cacheStore, dimensions: dimensions, maxScore: maxScore, logger: logger}
}

// Create persists a template under its category and refreshes the template
// cache. An existing category is overwritten.
func (s *TemplateService) Create(ctx context.Context, category, templateText string) (*models.Template, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrCategoryRequired
	}
	if strings.TrimSpace(templateText) == "" {
		return nil, ErrTemplateRequired
	}

	criteria := make(models.ScoreMap, len(s.dimensions))
	for _, dim := range s.dimensions {
		criteria[dim] = s.maxScore
	}

	template := &models.Template{
		Category:        category,
		Template:        templateText,
		ScoringCriteria: criteria,
	}

	err := s.db.WithContext(ctx).
		Where(models.Template{Category: category}).
		Assign(models.Template{Template: templateText, ScoringCriteria: criteria}).
		FirstOrCreate(template).Error
	if err != nil {
		return nil, err
	}

	if err := s.refreshCache(ctx); err != nil {
		s.logger.Warnf("Template cache refresh failed: %v", err)
	}
	return template, nil
}

// All returns every template keyed by category, cache first with store
// fallback and cache repopulation.
func (s *TemplateService) All(ctx context.Context) (map[string]models.Template, error) {
	var templates map[string]models.Template
	found, err := s.cache.GetJSON(ctx, TemplateCacheKey, &templates)
	if err != nil {
		s.logger.Warnf("Template cache read failed, falling back to database: %v", err)
	}
	if found {
		return templates, nil
	}

	templates, err = s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, TemplateCacheKey, templates); err != nil {
		s.logger.Warnf("Template cache repopulation failed: %v", err)
	}
	return templates, nil
}

// Get returns the template for category or ErrUnknownCategory.
func (s *TemplateService) Get(ctx context.Context, category string) (*models.Template, error) {
	templates, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	template, ok := templates[category]
	if !ok {
		return nil, ErrUnknownCategory
	}
	return &template, nil
}

// Categories returns the known category names.
func (s *TemplateService) Categories(ctx context.Context) ([]string, error) {
	templates, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(templates))
	for category := range templates {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *TemplateService) loadAll(ctx context.Context) (map[string]models.Template, error) {
	var rows []models.Template
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	templates := make(map[string]models.Template, len(rows))
	for _, row := range rows {
		templates[row.Category] = row
	}
	return templates, nil
}

func (s *TemplateService) refreshCache(ctx context.Context) error {
	templates, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	return s.cache.SetJSON(ctx, TemplateCacheKey, templates)
}
