package main // Entry point package

import (
	"os"

	"github.com/iliyamo/event-ticketing/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.L().WithError(err).Error("command failed")
		os.Exit(1)
	}
}
