// Package txn runs multi-document MongoDB writes in a transaction when the
// deployment supports one.
//
// A standalone mongod (the usual development setup) has no transactions;
// there Run executes fn directly, so callers get atomicity on replica sets
// and plain sequential writes elsewhere.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func performs the writes. ctx is a session context inside a transaction
// and the caller's context otherwise; use it for every operation.
type Func func(ctx context.Context) error

// Run executes fn inside a transaction on db's client, or without one when
// the deployment cannot start a session or reports transactions unsupported.
// log may be nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		warn(log, "failed to start session, running without transaction", err)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return nil
	}
	if IsNotSupported(err) {
		warn(log, "transactions not supported, running without transaction", err)
		return fn(ctx)
	}
	return err
}

func warn(log *zap.Logger, msg string, err error) {
	if log != nil {
		log.Warn(msg, zap.Error(err))
	}
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions.
//
// Known codes: 20 (transaction numbers need a replica set member or mongos),
// 51 (IllegalOperation), 263 (operation not allowed in a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Fall back to the message for drivers and proxies that do not surface a
	// code. Two keywords are required so an unrelated error mentioning a
	// session is not swallowed.
	msg := strings.ToLower(err.Error())
	matches := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			matches++
		}
	}
	return matches >= 2
}
