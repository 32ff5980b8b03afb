package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/checkout/internal/app/api/server"
	"github.com/fatflowers/checkout/internal/app/service/checkout"
	notificationlog "github.com/fatflowers/checkout/internal/app/service/notification_log"
	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/app/service/reconciliation"
	"github.com/fatflowers/checkout/internal/app/service/side_effect"
	"github.com/fatflowers/checkout/internal/app/service/statistics"
	"github.com/fatflowers/checkout/internal/platform/collaborator"
	"github.com/fatflowers/checkout/internal/platform/db"
	"github.com/fatflowers/checkout/internal/platform/lock"
	"github.com/fatflowers/checkout/pkg/config"
	"github.com/fatflowers/checkout/pkg/logger"
	"github.com/fatflowers/checkout/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 40 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	lock.Module,
	collaborator.Module,
	payment_record.Module,
	notificationlog.Module,
	side_effect.Module,
	checkout.Module,
	reconciliation.Module,
	statistics.Module,
	server.Module,
)
