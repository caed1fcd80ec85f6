// Package logging wires up the zap logger used across treecat.
package logging

import (
	"go.uber.org/zap"
)

// Setup builds a zap logger and installs it as the global logger.
// A development config is used when debug is set, so per-file filter
// decisions logged at Debug become visible.
func Setup(debug bool, appName, appVersion string) (*zap.Logger, error) {
	var cfg zap.Config

	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.InitialFields = map[string]interface{}{
		"appName":    appName,
		"appVersion": appVersion,
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
