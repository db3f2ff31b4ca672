package sqldb

import (
	"context"
)

// Client is the SQL backend of the template ledger
type Client interface {
	Init() error
	Close() error
	GetConf() *Conf
	Ping(ctx context.Context) error

	// Exec executes SQL statement like INSERT, UPDATE, DELETE. Returns rows affected
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// QueryRows is eager. Fails upfront on statement execution. Caller closes Rows
	QueryRows(ctx context.Context, query string, args ...any) (Rows, error)
}
