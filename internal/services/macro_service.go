package services

import (
	"context"

	"macromate/internal/cache"
	"macromate/internal/matcher"
	"macromate/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MacroCacheKey is the cache key holding the full macro list as JSON.
const MacroCacheKey = "macros"

// MacroService 宏存储与匹配服务
//
// The database is authoritative; the cache is a read-through optimization
// that is repopulated on every miss and overwritten by every sync run.
type MacroService struct {
	db     *gorm.DB
	cache  cache.Store
	logger *logrus.Logger
}

// NewMacroService 创建宏服务
func NewMacroService(db *gorm.DB, cacheStore cache.Store, logger *logrus.Logger) *MacroService {
	if logger == nil {
		logger = logrus.New()
	}
	return &MacroService{db: db, cache: cacheStore, logger: logger}
}

// List returns all macros in helpdesk order, cache first with store fallback.
func (s *MacroService) List(ctx context.Context) ([]models.Macro, error) {
	var macros []models.Macro
	found, err := s.cache.GetJSON(ctx, MacroCacheKey, &macros)
	if err != nil {
		// A broken cache must not take the read path down.
		s.logger.Warnf("Macro cache read failed, falling back to database: %v", err)
	}
	if found {
		return macros, nil
	}

	if err := s.db.WithContext(ctx).Order("position ASC").Find(&macros).Error; err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, MacroCacheKey, macros); err != nil {
		s.logger.Warnf("Macro cache repopulation failed: %v", err)
	}
	return macros, nil
}

// MatchResult is the outcome of comparing agent text against the macro set.
type MatchResult struct {
	Match bool          `json:"match"`
	Macro *models.Macro `json:"macro,omitempty"`
}

// Match tests text against every comment-producing action in stored order and
// returns the first macro whose template accepts it. First match wins; there
// is no best-match ranking.
func (s *MacroService) Match(ctx context.Context, text string) (*MatchResult, error) {
	macros, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range macros {
		macro := &macros[i]
		for _, action := range macro.Actions {
			if action.Field != models.CommentField {
				continue
			}
			m, err := matcher.Compile(action.Value)
			if err != nil {
				// A template that does not compile never matches.
				s.logger.Debugf("Macro %d template does not compile: %v", macro.ID, err)
				continue
			}
			if m.Matches(text) {
				return &MatchResult{Match: true, Macro: macro}, nil
			}
		}
	}
	return &MatchResult{Match: false}, nil
}

// ReplaceAll swaps the macro table contents for the given set inside one
// transaction, preserving the given order, then refreshes the cache. Running
// the same sync twice leaves the same rows behind.
func (s *MacroService) ReplaceAll(ctx context.Context, macros []models.Macro) error {
	for i := range macros {
		macros[i].Position = i
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Macro{}).Error; err != nil {
			return err
		}
		if len(macros) == 0 {
			return nil
		}
		return tx.Create(&macros).Error
	})
	if err != nil {
		return err
	}

	// The cache write completes before ReplaceAll returns, so readers see
	// the new set as soon as the sync reports success.
	if err := s.cache.SetJSON(ctx, MacroCacheKey, macros); err != nil {
		s.logger.Warnf("Macro cache refresh failed: %v", err)
	}

	s.logger.Infof("Macro store replaced with %d macros", len(macros))
	return nil
}
