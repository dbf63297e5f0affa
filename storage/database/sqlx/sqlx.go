package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// psql builds postgres statements ($n placeholders).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// trapNoRowsErr maps the "no rows" error to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func orderBy(qb sq.SelectBuilder, ordering []core.DBOrdering) sq.SelectBuilder {
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}
	return qb
}

func selectAll(ctx context.Context, db sqlx.QueryerContext, dest interface{}, qb sq.SelectBuilder) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, db, dest, query, args...)
}

func selectOne(ctx context.Context, db sqlx.QueryerContext, dest interface{}, qb sq.SelectBuilder) error {
	query, args, err := qb.Limit(1).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, db, dest, query, args...)
}

func exec(ctx context.Context, db sqlx.ExecerContext, qb sq.Sqlizer) (sql.Result, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return db.ExecContext(ctx, query, args...)
}

// checkAffected returns notFound when res affected no rows.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
