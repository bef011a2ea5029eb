package main

import (
	"context"
	"encoding/json"
	"fmt"

	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/runlock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var automateChurch int64

// automateCmd runs the membership rules once, outside the server's schedule.
var automateCmd = &cobra.Command{
	Use:   "automate",
	Short: "Run membership automation once",
	Long: `Recompute type, role and status for every person.

Without --church every active church is processed. The same per-church
lock the server uses is taken, so a run already in progress is reported
rather than duplicated.`,
	Args: cobra.NoArgs,
	RunE: runAutomate,
}

func init() {
	automateCmd.Flags().Int64Var(&automateChurch, "church", 0, "Process only this church ID")
}

func runAutomate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	var lock automation.Locker = runlock.NewLocal()
	if redisAddr != "" {
		rdb := runlock.NewRedisClient(redisAddr, "", 0)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		lock = runlock.NewRedis(rdb, "iglesiahub:automation:", 0, logger)
	}
	svc := automation.New(personstore.New(db), nil, lock, logger)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if automateChurch > 0 {
		res, err := svc.ApplyChurch(ctx, automateChurch)
		if err != nil {
			return fmt.Errorf("church %d: %w", automateChurch, err)
		}
		logger.Info("automation finished",
			zap.Int64("church_id", automateChurch),
			zap.Int("total", res.Total),
			zap.Int("updated", res.Updated),
			zap.Int("errors", res.Errors))
		return enc.Encode(res)
	}

	sum, err := automation.NewRunner(svc, churchstore.New(db), logger).RunAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("automation finished",
		zap.Int("churches", len(sum.Churches)),
		zap.Int("updated", sum.Updated),
		zap.Int("failed_churches", sum.Failed))
	return enc.Encode(sum)
}
