package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
)

// QueryRunner is the part of the query service the HTTP API needs.
type QueryRunner interface {
	Execute(ctx context.Context, desc *domain.Descriptor) (*domain.Result, error)
	Explain(ctx context.Context, desc *domain.Descriptor) (*domain.CompiledQuery, error)
	Columns(ctx context.Context, table string) ([]domain.Column, error)
}

// QueryHandler serves query execution endpoints.
type QueryHandler struct {
	runner QueryRunner
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(runner QueryRunner) *QueryHandler {
	return &QueryHandler{runner: runner}
}

// Run executes a descriptor and returns the response envelope.
func (h *QueryHandler) Run(c *gin.Context) {
	var desc domain.Descriptor
	if err := c.ShouldBindJSON(&desc); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.runner.Execute(c.Request.Context(), &desc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.NewSuccessEnvelope(result))
}

// compiledStatement is the JSON form of one compiled statement.
type compiledStatement struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

func toCompiledStatement(stmt domain.Statement) compiledStatement {
	params := make([]interface{}, len(stmt.Params))
	for i, p := range stmt.Params {
		params[i] = p.Value
	}
	return compiledStatement{SQL: stmt.Query, Params: params}
}

// Compile returns the SQL a descriptor compiles to without running it.
func (h *QueryHandler) Compile(c *gin.Context) {
	var desc domain.Descriptor
	if err := c.ShouldBindJSON(&desc); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	compiled, err := h.runner.Explain(c.Request.Context(), &desc)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dialect": compiled.Dialect,
		"base":    toCompiledStatement(compiled.Base),
		"count":   toCompiledStatement(compiled.Count),
		"window":  toCompiledStatement(compiled.Window),
		"columns": compiled.Mapping.OutputColumns(),
	})
}

// Columns lists the columns of a table.
func (h *QueryHandler) Columns(c *gin.Context) {
	cols, err := h.runner.Columns(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cols})
}
