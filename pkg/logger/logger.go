package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openswoop/taucourses/pkg/config"
	"github.com/openswoop/taucourses/pkg/scrape"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "json":
		zapCfg.Encoding = "json"
	default:
		zapCfg.Encoding = "console"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// Reporter logs the progress of each unit of work.
type Reporter struct {
	l *zap.Logger
}

var _ scrape.Reporter = Reporter{}

func NewReporter(l *zap.Logger) Reporter {
	return Reporter{l}
}

func (r Reporter) UnitStarted(unit string, index, total int) {
	r.l.Info("unit_started", zap.String("unit", unit), zap.Int("index", index), zap.Int("total", total))
}

func (r Reporter) UnitDone(unit string) {
	r.l.Debug("unit_done", zap.String("unit", unit))
}

func (r Reporter) UnitFailed(unit string, err error) {
	r.l.Error("unit_failed", zap.String("unit", unit), zap.Error(err))
}

func (r Reporter) PageFetched(unit string, page int) {
	r.l.Debug("page_fetched", zap.String("unit", unit), zap.Int("page", page))
}

func (r Reporter) ExamLookupFailed(q scrape.ExamQuery, err error) {
	r.l.Warn("exam_lookup_failed",
		zap.String("course", q.Course),
		zap.String("group", q.Group),
		zap.String("year", q.Year),
		zap.Int("semester", q.Semester),
		zap.Error(err),
	)
}
