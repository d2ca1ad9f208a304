package store

import (
	"context"
	"database/sql"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqlite builds dialect-aware statements.
var sqlite = entsql.Dialect(dialect.SQLite)

// selectAll runs sel and scans every row into dst, a pointer to a slice.
func selectAll(ctx context.Context, drv *entsql.Driver, sel *entsql.Selector, dst any) error {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dst)
}

// execute runs a statement built by ent's sql builder.
func execute(ctx context.Context, drv *entsql.Driver, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// nullableTime converts an optional time into a driver value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
