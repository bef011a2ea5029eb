// Command iglesiactl runs operator tasks against an IglesiaHub database:
// one-off membership automation runs and YAML seeding.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/indexes"
	"github.com/dalemusser/iglesiahub/internal/app/system/validators"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	mongoURI  string
	mongoDB   string
	redisAddr string
	verbose   bool
	timeout   time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "iglesiactl",
	Short: "IglesiaHub operator tool",
	Long: `Operator commands for an IglesiaHub deployment.

Connection settings default to the same IGLESIAHUB_* environment
variables the server reads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// connect opens the database and makes sure collections and indexes exist.
func connect(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(mongoDB)
	if err := validators.EnsureAll(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return client, db, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("IGLESIAHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&mongoDB, "db", envOr("IGLESIAHUB_MONGO_DATABASE", "iglesia_hub"), "MongoDB database name")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", os.Getenv("IGLESIAHUB_REDIS_ADDR"), "Redis address for the automation lock (blank: in-process lock)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(automateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
