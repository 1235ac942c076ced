package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"todobot/internal/config"
)

// New builds the process logger from the [log] config section.
func New(cfg config.Log, out io.Writer) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(out)

	level := log.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// ActionLog records task actions as structured log entries.
type ActionLog struct {
	logger log.FieldLogger
}

func NewActionLog(logger log.FieldLogger) *ActionLog {
	return &ActionLog{logger: logger}
}

func (a *ActionLog) LogAction(userID int64, action, detail string) {
	a.logger.WithFields(log.Fields{
		"user_id": userID,
		"action":  action,
		"detail":  detail,
	}).Info("task action")
}
