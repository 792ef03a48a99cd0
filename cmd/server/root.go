package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Event ticketing backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal in containers; an unreadable one is not.
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return err
		}
		lc := config.LoadLogConfig()
		logger.Configure(lc.Level, lc.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
}
