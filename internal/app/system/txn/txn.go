// Package txn runs multi-document mutations as one atomic unit.
//
// The ordering invariant makes this load-bearing: a reorder or move
// rewrites the position of every non-deleted bookmark in a group, and a
// half-applied batch would leave duplicate or missing ranks that every
// later read observes. All renumbering write-backs and the group cascade
// delete therefore go through WithTransaction.
//
// Mongo multi-document transactions require a replica set (or mongos).
// On a standalone server starting a transaction fails with a server
// error; in that case the callback is re-run outside a transaction so
// development setups keep working. The per-group renumbering is still a
// single ordered bulk write there, which is the strongest guarantee a
// standalone deployment offers.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction executes fn inside a Mongo transaction, falling back to
// a plain invocation when the deployment does not support transactions.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone deployment, old wire version).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if mongo.IsNetworkError(err) {
		return false
	}
	if ce, ok := err.(mongo.CommandError); ok {
		cmdErr = ce
	}
	switch cmdErr.Code {
	case 20, 51, 263:
		// IllegalOperation variants raised for transactions outside a
		// replica set.
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set") {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "session") {
		return true
	}
	if strings.Contains(msg, "illegal operation") && strings.Contains(msg, "transaction") {
		return true
	}
	return false
}
