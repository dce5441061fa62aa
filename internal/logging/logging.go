// Package logging builds the application zap logger.
package logging

import "go.uber.org/zap"

// New returns a zap logger configured for env: JSON output at info level
// for "production", console output at debug level otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
