package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	saved "github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
)

// statusFor maps an error to the HTTP status returned with its envelope.
func statusFor(err error) int {
	var dbErr *database.Error
	switch {
	case errors.Is(err, domain.ErrMissingTable), errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, saved.ErrInvalidPayload), errors.Is(err, saved.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, saved.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, saved.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, saved.ErrNoValidEntries):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dbErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), domain.NewErrorEnvelope(err))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, domain.Envelope{Success: false, Error: msg})
}
