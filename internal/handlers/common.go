package handlers

import (
	"errors"
	"net/http"

	"github.com/Mojelloul/doqcm/internal/models"
	"github.com/Mojelloul/doqcm/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Document = models.Document
type User = models.User

// respondError maps the service error taxonomy onto HTTP statuses. Generation
// and storage failures are surfaced as generic messages so collaborator
// internals never leak to the client.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		authErr       *services.AuthenticationError
		recipientErr  *services.RecipientResolutionError
		generationErr *services.GenerationError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: authErr.Error()})
	case errors.As(err, &recipientErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: recipientErr.Error()})
	case errors.As(err, &generationErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "quiz generation failed, please try again"})
	case errors.Is(err, services.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: services.ErrAlreadyCompleted.Error()})
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "you do not have access to this document"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "something went wrong"})
	}
}
