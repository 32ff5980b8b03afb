package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fatflowers/checkout/pkg/config"
)

// New builds the process logger: JSON at info level in prod, console output
// with debug enabled otherwise.
func New(cfg *config.Config) (*zap.SugaredLogger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProd {
		zc = zap.NewProductionConfig()
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.TimeKey = "time"
	l, err := zc.Build(zap.Fields(zap.String("service", "checkout")))
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func registerSync(lc fx.Lifecycle, l *zap.SugaredLogger) {
	lc.Append(fx.StopHook(func() {
		_ = l.Sync()
	}))
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerSync),
)
