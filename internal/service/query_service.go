// Package service implements the query execution orchestrator.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/satishbabariya/querydeck/internal/adapters/telemetry"
	"github.com/satishbabariya/querydeck/internal/core/catalog"
	"github.com/satishbabariya/querydeck/internal/core/query/aggregate"
	"github.com/satishbabariya/querydeck/internal/core/query/compiler"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/core/query/executor"
	"github.com/satishbabariya/querydeck/internal/debug"
)

// QueryService sequences compile, count, window and post-processing for one descriptor.
type QueryService struct {
	db        database.Adapter
	catalog   catalog.Catalog
	compiler  domain.QueryCompiler
	executor  *executor.QueryExecutor
	telemetry telemetry.Telemetry
}

// NewQueryService creates a new query service.
func NewQueryService(
	db database.Adapter,
	cat catalog.Catalog,
	tel telemetry.Telemetry,
) *QueryService {
	dialect := domain.SQLDialect(db.GetDialect())
	if tel == nil {
		tel = telemetry.NewNoopTelemetry()
	}
	return &QueryService{
		db:        db,
		catalog:   cat,
		compiler:  compiler.NewSQLCompiler(dialect),
		executor:  executor.NewQueryExecutor(dialect),
		telemetry: tel,
	}
}

// Execute runs a descriptor and returns the post-processed window with its pagination.
// No partial result is ever returned; the acquired connection is released on every path.
func (s *QueryService) Execute(ctx context.Context, desc *domain.Descriptor) (result *domain.Result, err error) {
	if desc == nil || strings.TrimSpace(desc.Table) == "" {
		return nil, domain.ErrMissingTable
	}

	start := time.Now()
	defer func() {
		s.record(ctx, desc, start, result, err)
	}()

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, s.db.TranslateError(err)
	}
	defer conn.Close()

	compiled, err := s.compile(ctx, conn, desc)
	if err != nil {
		return nil, err
	}

	total, err := s.executor.Count(ctx, conn, compiled.Count)
	if err != nil {
		s.forgetColumns(desc)
		return nil, s.db.TranslateError(err)
	}
	pagination := domain.NewPaginationState(desc.CurrentPage(), desc.PageSize, total)

	columns, rows, err := s.executor.Rows(ctx, conn, compiled.Window)
	if err != nil {
		s.forgetColumns(desc)
		return nil, s.db.TranslateError(err)
	}

	if len(compiled.Mapping.Columns) > 0 {
		columns = compiled.Mapping.Columns
	}
	columns = append(append([]string(nil), columns...), compiled.Mapping.Aggregates...)

	return &domain.Result{
		Columns:    columns,
		Rows:       aggregate.Apply(rows, desc.Aggregates),
		Pagination: pagination,
	}, nil
}

// Run executes a descriptor and wraps the outcome in a response envelope.
func (s *QueryService) Run(ctx context.Context, desc *domain.Descriptor) domain.Envelope {
	result, err := s.Execute(ctx, desc)
	if err != nil {
		return domain.NewErrorEnvelope(err)
	}
	return domain.NewSuccessEnvelope(result)
}

// Explain compiles a descriptor without executing it. Columns are resolved
// through the catalog when the descriptor names none.
func (s *QueryService) Explain(ctx context.Context, desc *domain.Descriptor) (*domain.CompiledQuery, error) {
	if desc == nil || strings.TrimSpace(desc.Table) == "" {
		return nil, domain.ErrMissingTable
	}
	if len(desc.Columns) > 0 {
		return s.compiler.Compile(ctx, desc, desc.Columns)
	}

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, s.db.TranslateError(err)
	}
	defer conn.Close()

	return s.compile(ctx, conn, desc)
}

// Columns lists the columns of a table.
func (s *QueryService) Columns(ctx context.Context, table string) ([]domain.Column, error) {
	if strings.TrimSpace(table) == "" {
		return nil, domain.ErrMissingTable
	}

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, s.db.TranslateError(err)
	}
	defer conn.Close()

	cols, err := s.catalog.ListColumns(ctx, conn, table)
	if err != nil {
		return nil, s.db.TranslateError(err)
	}
	return cols, nil
}

// compile resolves the column list and compiles the descriptor.
func (s *QueryService) compile(ctx context.Context, conn database.Conn, desc *domain.Descriptor) (*domain.CompiledQuery, error) {
	columns := desc.Columns
	if len(columns) == 0 && s.catalog != nil {
		cols, err := s.catalog.ListColumns(ctx, conn, desc.Table)
		if err != nil {
			return nil, s.db.TranslateError(err)
		}
		columns = catalog.Names(cols)
	}

	compiled, err := s.compiler.Compile(ctx, desc, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}
	return compiled, nil
}

// forgetColumns drops catalog-resolved columns after a failed statement so
// the next request re-introspects a table whose schema may have changed.
func (s *QueryService) forgetColumns(desc *domain.Descriptor) {
	if len(desc.Columns) > 0 {
		return
	}
	if inv, ok := s.catalog.(catalog.Invalidator); ok {
		debug.Debug("invalidating cached columns", "table", desc.Table)
		inv.Invalidate(desc.Table)
	}
}

func (s *QueryService) record(ctx context.Context, desc *domain.Descriptor, start time.Time, result *domain.Result, err error) {
	elapsed := time.Since(start)
	dialect := string(s.db.GetDialect())

	info := telemetry.QueryInfo{
		Table:    desc.Table,
		Dialect:  dialect,
		Duration: elapsed,
		Success:  err == nil,
	}
	if result != nil {
		info.Rows = len(result.Rows)
	}
	s.telemetry.RecordQuery(ctx, info)

	if err != nil {
		category := ""
		var dbErr *database.Error
		if errors.As(err, &dbErr) {
			category = string(dbErr.Category)
		}
		s.telemetry.RecordError(ctx, telemetry.ErrorInfo{Error: err, Table: desc.Table, Category: category})
		debug.Warn("query failed", "table", desc.Table, "duration", elapsed, "error", err)
		return
	}

	debug.Info("query executed",
		"table", desc.Table,
		"rows", info.Rows,
		"total", result.Pagination.TotalCount,
		"duration", elapsed,
	)
}
