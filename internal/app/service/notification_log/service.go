package notification_log

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/tool"
)

type Service struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	pending sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.PaymentNotificationLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	log := logctx.FromCtx(ctx, s.log)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.db.Create(entry).Error; err != nil {
			log.Errorw("notification_log_save_failed", "attempt_id", entry.AttemptID, "status", entry.Status, "err", err)
		}
	}()
}

// Flush waits for in-flight saves or until ctx is done.
func (s *Service) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification log flush: %w", ctx.Err())
	}
}

// ListByAttemptID returns the audit trail of one attempt, oldest first.
func (s *Service) ListByAttemptID(ctx context.Context, attemptID string) ([]*models.PaymentNotificationLog, error) {
	var rows []*models.PaymentNotificationLog
	if err := s.db.WithContext(ctx).Where("attempt_id = ?", attemptID).Order("created_at asc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	return rows, nil
}

func registerFlush(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{OnStop: s.Flush})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerFlush),
)
