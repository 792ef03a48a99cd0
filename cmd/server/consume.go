package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// consumeCmd runs only the activity consumer, for deployments that keep it
// out of the API process.
var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Drain the activity queue into the activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.Broker.URL == "" {
			return errors.New("RABBITMQ_URL is not set")
		}
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = queue.NewConsumer(cfg.Broker.URL, cfg.Broker.ActivityQueue, repository.NewActivityRepo(db)).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
