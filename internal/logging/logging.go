package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a sugared logger for the given deployment mode. Production mode
// emits JSON; anything else gets the human-readable development encoder.
func New(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
