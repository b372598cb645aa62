package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	query "github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/core/savedquery"
	"github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
)

// maxImportSize bounds import request bodies.
const maxImportSize = 8 << 20

// SavedHandler serves the saved-query repository.
type SavedHandler struct {
	repo   *savedquery.Repository
	runner QueryRunner
}

// NewSavedHandler creates a new SavedHandler.
func NewSavedHandler(repo *savedquery.Repository, runner QueryRunner) *SavedHandler {
	return &SavedHandler{repo: repo, runner: runner}
}

// SaveRequest is the body of POST /api/saved.
type SaveRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Config      domain.QueryConfig `json:"config"`
}

// List returns every saved query in repository order.
func (h *SavedHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.repo.List()})
}

// Get returns one saved query.
func (h *SavedHandler) Get(c *gin.Context) {
	q, err := h.repo.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": q})
}

// Save stores a new saved query.
func (h *SavedHandler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	q, err := h.repo.Save(c.Request.Context(), req.Config, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": q})
}

// Import merges an uploaded JSON or YAML document.
func (h *SavedHandler) Import(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, query.Envelope{
				Success: false,
				Error:   fmt.Sprintf("import document exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		badRequest(c, "failed to read request body")
		return
	}

	result, err := h.repo.Import(c.Request.Context(), payload)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Export downloads the collection as JSON or YAML (?format=yaml).
func (h *SavedHandler) Export(c *gin.Context) {
	format, err := savedquery.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	data, err := h.repo.Export(format)
	if err != nil {
		fail(c, err)
		return
	}

	contentType := "application/json"
	filename := "saved-queries.json"
	if format == savedquery.FormatYAML {
		contentType = "application/yaml"
		filename = "saved-queries.yaml"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// Duplicate copies a saved query.
func (h *SavedHandler) Duplicate(c *gin.Context) {
	q, err := h.repo.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": q})
}

// Delete removes a saved query.
func (h *SavedHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Sort reorders the collection (?by=name or ?by=date).
func (h *SavedHandler) Sort(c *gin.Context) {
	var err error
	switch c.DefaultQuery("by", "date") {
	case "name":
		err = h.repo.SortByName(c.Request.Context())
	case "date":
		err = h.repo.SortByDate(c.Request.Context())
	default:
		badRequest(c, "by must be name or date")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.repo.List()})
}

// Run executes a saved query, optionally at another page (?page=n).
func (h *SavedHandler) Run(c *gin.Context) {
	q, err := h.repo.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	desc := q.Config.ToDescriptor()
	if p := c.Query("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			badRequest(c, "page must be a number")
			return
		}
		desc.Page = page
	}

	result, err := h.runner.Execute(c.Request.Context(), desc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, query.NewSuccessEnvelope(result))
}
