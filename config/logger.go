package config

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the application logger. Set APP_ENV=production for JSON
// output; anything else gets the human-readable development encoder.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
