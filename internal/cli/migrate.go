package cli

import (
	"context"
	"fmt"
	"log"

	"quiz-platform/internal/config"
	"quiz-platform/internal/db"
	"quiz-platform/internal/repository"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the MongoDB indexes the queries rely on.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.StorageMongo {
		return fmt.Errorf("migrate requires the %q storage driver, got %q", config.StorageMongo, cfg.Storage.Driver)
	}

	client, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer db.Disconnect(client)

	if err := repository.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
		return err
	}
	log.Printf("Indexes ensured on %s", cfg.Mongo.Database)
	return nil
}
