package notification_log

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/internal/platform/db/dbtest"
)

func TestSave_FlushAndList(t *testing.T) {
	s := New(dbtest.New(t), zap.NewNop().Sugar())
	ctx := context.Background()

	s.Save(ctx, nil)
	s.Save(ctx, &models.PaymentNotificationLog{
		Gateway:          "payhere",
		AttemptID:        "ORD1-1",
		StatusCode:       "2",
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(`{"status_code":"2"}`),
		Status:           models.PaymentNotificationLogStatusReceived,
	})
	s.Save(ctx, &models.PaymentNotificationLog{
		Gateway:          "payhere",
		AttemptID:        "ORD2-1",
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(`{}`),
		Status:           models.PaymentNotificationLogStatusRejected,
	})
	require.NoError(t, s.Flush(ctx))

	rows, err := s.ListByAttemptID(ctx, "ORD1-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotEmpty(t, rows[0].ID)
	require.Equal(t, models.PaymentNotificationLogStatusReceived, rows[0].Status)
}

func TestFlush_RespectsContext(t *testing.T) {
	s := New(dbtest.New(t), zap.NewNop().Sugar())
	s.pending.Add(1)
	defer s.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, s.Flush(ctx))
}
