package eventbus

import (
	"github.com/hibiken/asynq"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// asynqLogger adapts our structured logger to asynq's minimal logging
// interface so server/client diagnostics flow through the same sink as
// everything else.
type asynqLogger struct {
	logger *Logger.Logger
}

func newAsynqLogger(logger *Logger.Logger) asynq.Logger {
	return &asynqLogger{logger: logger}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.logger.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.logger.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.logger.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.logger.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal(args...) }
