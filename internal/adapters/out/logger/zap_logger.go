package logger

import (
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/out"
	"go.uber.org/zap"
)

// ZapLogger - структурный JSON-логгер для не-локальных окружений
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(env string) (*ZapLogger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	config.OutputPaths = []string{"stdout"}

	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{
		logger: zapLogger,
	}, nil
}

func (l *ZapLogger) WithFields(fields out.LogFields) out.LoggerPort {
	return &ZapLogger{
		logger: l.logger.With(zapFields(fields)...),
	}
}

func (l *ZapLogger) WithModule(module string) out.LoggerPort {
	return &ZapLogger{
		logger: l.logger.Named(module),
	}
}

func (l *ZapLogger) Debug(event string, fields out.LogFields) {
	l.logger.Debug(event, zapFields(fields)...)
}

func (l *ZapLogger) Info(event string, fields out.LogFields) {
	l.logger.Info(event, zapFields(fields)...)
}

func (l *ZapLogger) Warn(event string, fields out.LogFields) {
	l.logger.Warn(event, zapFields(fields)...)
}

func (l *ZapLogger) Error(event string, fields out.LogFields) {
	l.logger.Error(event, zapFields(fields)...)
}

func zapFields(fields out.LogFields) []zap.Field {
	zfields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zfields = append(zfields, zap.Any(k, v))
	}
	return zfields
}
