package services

import (
	"context"

	"macromate/internal/models"
	"macromate/pkg/zendesk"

	"github.com/sirupsen/logrus"
)

// SyncService 定时从帮助台拉取宏并写入存储
type SyncService struct {
	lister zendesk.MacroLister
	macros *MacroService
	logger *logrus.Logger
}

// NewSyncService 创建同步服务
func NewSyncService(lister zendesk.MacroLister, macros *MacroService, logger *logrus.Logger) *SyncService {
	if logger == nil {
		logger = logrus.New()
	}
	return &SyncService{lister: lister, macros: macros, logger: logger}
}

// Run performs one full sync: fetch every active macro, keep only the ones
// that produce a ticket reply, replace the store contents and refresh the
// cache. Any error is returned to the caller; the scheduled job logs it and
// waits for the next run rather than retrying.
func (s *SyncService) Run(ctx context.Context) error {
	fetched, err := s.lister.ListActiveMacros(ctx)
	if err != nil {
		return err
	}

	macros := FilterCommentMacros(fetched)
	if err := s.macros.ReplaceAll(ctx, macros); err != nil {
		return err
	}

	s.logger.Infof("Macro sync completed: %d fetched, %d comment-producing", len(fetched), len(macros))
	return nil
}

// RunScheduled wraps Run for the cron scheduler: errors are logged, never
// propagated, so a failing helpdesk cannot take the process down.
func (s *SyncService) RunScheduled() {
	if err := s.Run(context.Background()); err != nil {
		s.logger.Errorf("Macro sync failed: %v", err)
	}
}

// FilterCommentMacros converts fetched macros to stored ones, keeping only
// macros with at least one comment-producing action.
func FilterCommentMacros(fetched []zendesk.Macro) []models.Macro {
	macros := make([]models.Macro, 0, len(fetched))
	for _, zm := range fetched {
		macro := models.Macro{
			ID:        zm.ID,
			URL:       zm.URL,
			Title:     zm.Title,
			Active:    zm.Active,
			Actions:   make(models.ActionList, 0, len(zm.Actions)),
			UpdatedAt: zm.UpdatedAt,
			CreatedAt: zm.CreatedAt,
		}
		for _, action := range zm.Actions {
			macro.Actions = append(macro.Actions, models.Action{Field: action.Field, Value: action.Value})
		}
		if macro.HasCommentAction() {
			macros = append(macros, macro)
		}
	}
	return macros
}
