package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jjm-manufacturing/core1-backend/internal/database"

// TracedDB wraps a DatabasePool and opens a client span around every statement.
type TracedDB struct {
	pool   DatabasePool
	tracer trace.Tracer
}

// NewTracedDB wraps pool using the global tracer provider.
func NewTracedDB(pool DatabasePool) *TracedDB {
	return NewTracedDBWithProvider(pool, otel.GetTracerProvider())
}

func NewTracedDBWithProvider(pool DatabasePool, tp trace.TracerProvider) *TracedDB {
	return &TracedDB{pool: pool, tracer: tp.Tracer(tracerName)}
}

func (db *TracedDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := startSpan(ctx, db.tracer, "db.query", sql)
	defer span.End()

	rows, err := db.pool.Query(ctx, sql, args...)
	RecordDatabaseError(span, err)
	return rows, err
}

// QueryRow spans only cover dispatch; the row is scanned after the span ends.
func (db *TracedDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := startSpan(ctx, db.tracer, "db.query_row", sql)
	defer span.End()

	return db.pool.QueryRow(ctx, sql, args...)
}

func (db *TracedDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := startSpan(ctx, db.tracer, "db.exec", sql)
	defer span.End()

	tag, err := db.pool.Exec(ctx, sql, args...)
	RecordDatabaseError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	}
	return tag, err
}

func (db *TracedDB) Begin(ctx context.Context) (pgx.Tx, error) {
	ctx, span := startSpan(ctx, db.tracer, "db.begin", "")
	defer span.End()

	tx, err := db.pool.Begin(ctx)
	RecordDatabaseError(span, err)
	if err != nil {
		return nil, err
	}
	return &TracedTx{Tx: tx, tracer: db.tracer}, nil
}

// TracedTx traces the statements issued inside a transaction.
type TracedTx struct {
	pgx.Tx
	tracer trace.Tracer
}

func (tx *TracedTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := startSpan(ctx, tx.tracer, "db.tx.query", sql)
	defer span.End()

	rows, err := tx.Tx.Query(ctx, sql, args...)
	RecordDatabaseError(span, err)
	return rows, err
}

func (tx *TracedTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := startSpan(ctx, tx.tracer, "db.tx.query_row", sql)
	defer span.End()

	return tx.Tx.QueryRow(ctx, sql, args...)
}

func (tx *TracedTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := startSpan(ctx, tx.tracer, "db.tx.exec", sql)
	defer span.End()

	tag, err := tx.Tx.Exec(ctx, sql, args...)
	RecordDatabaseError(span, err)
	return tag, err
}

func (tx *TracedTx) Commit(ctx context.Context) error {
	ctx, span := startSpan(ctx, tx.tracer, "db.tx.commit", "")
	defer span.End()

	err := tx.Tx.Commit(ctx)
	RecordDatabaseError(span, err)
	return err
}

func (tx *TracedTx) Rollback(ctx context.Context) error {
	ctx, span := startSpan(ctx, tx.tracer, "db.tx.rollback", "")
	defer span.End()

	err := tx.Tx.Rollback(ctx)
	if !errors.Is(err, pgx.ErrTxClosed) {
		RecordDatabaseError(span, err)
	}
	return err
}

func startSpan(ctx context.Context, tracer trace.Tracer, name, sql string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("db.system", "postgresql")}
	if sql != "" {
		attrs = append(attrs,
			attribute.String("db.statement", sql),
			attribute.String("db.operation", statementVerb(sql)),
		)
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// RecordDatabaseError marks span as failed. Missing rows are not failures.
func RecordDatabaseError(span trace.Span, err error) {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
