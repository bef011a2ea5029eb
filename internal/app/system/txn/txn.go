// Package txn runs multi-document writes inside a MongoDB transaction and
// detects deployments (standalone servers) that cannot host one.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions or sessions are unavailable.
const (
	codeIllegalOperation        = 20
	codeNoReplicationEnabled    = 51
	codeOperationNotSupportedTx = 263
)

// IsNotSupported reports whether err means the server cannot run a transaction.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNoReplicationEnabled, codeOperationNotSupportedTx:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTx := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	switch {
	case hasTx && strings.Contains(msg, "replica set"):
		return true
	case hasTx && hasSession:
		return true
	case hasTx && strings.Contains(msg, "illegal operation"):
		return true
	case hasSession && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}

// Runner executes fn inside a transaction on client. When the server cannot
// host transactions fn is run once more without one and the fallback is logged.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// NewRunner returns a Runner. A nil client always runs fn directly.
func NewRunner(client *mongo.Client, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, log: logger}
}

// Run executes fn. fn must be safe to re-run when the transaction path fails
// before any write commits.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.client == nil {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.log.Warn("sessions not supported; running writes without a transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.log.Warn("transactions not supported; running writes sequentially", zap.Error(err))
		return fn(ctx)
	}
	return err
}
