package database

import (
	"context"
	"fmt"
)

const (
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
)

// Open connects the JobStore named by kind. dsn is the Postgres URL or the SQLite file path.
func Open(ctx context.Context, kind, dsn string) (JobStore, error) {
	switch kind {
	case KindPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres store needs DATABASE_URL")
		}
		pg, err := ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case KindSQLite:
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
