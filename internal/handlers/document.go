package handlers

import (
	"net/http"

	"github.com/Mojelloul/doqcm/internal/services"
	"github.com/Mojelloul/doqcm/internal/ws"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	quizService     *services.QuizService
	authService     *services.AuthService
	hub             *ws.Hub
}

func NewDocumentHandler(documentService *services.DocumentService, quizService *services.QuizService, authService *services.AuthService, hub *ws.Hub) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		quizService:     quizService,
		authService:     authService,
		hub:             hub,
	}
}

// ListShared godoc
// @Summary      List documents shared with the caller
// @Description  Documents distributed to the authenticated user, newest first, with score state
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} services.SharedDocument
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/documents [get]
func (h *DocumentHandler) ListShared(c *gin.Context) {
	userID := c.GetString("user_id")

	documents, err := h.documentService.GetSharedDocuments(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, documents)
}

// GetQuiz godoc
// @Summary      Load the caller's quiz for a document
// @Description  Assigned questions and choices for a shared document, or the stored score if already completed
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Document ID"
// @Success      200 {object} services.QuizView
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/documents/{id}/quiz [get]
func (h *DocumentHandler) GetQuiz(c *gin.Context) {
	userID := c.GetString("user_id")
	documentID := c.Param("id")

	view, err := h.quizService.GetQuiz(userID, documentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

type SubmitAnswersRequest struct {
	// Answers maps question id to the selected choice id.
	Answers map[string]string `json:"answers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary      Submit quiz answers
// @Description  Score one selected choice per assigned question and record the percentage
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Document ID"
// @Param        request body SubmitAnswersRequest true "Selected choice per question"
// @Success      200 {object} services.SubmitResult
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/documents/{id}/quiz [post]
func (h *DocumentHandler) SubmitQuiz(c *gin.Context) {
	userID := c.GetString("user_id")
	documentID := c.Param("id")

	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.quizService.SubmitAnswers(userID, documentID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	email := ""
	if user, err := h.authService.GetUser(userID); err == nil {
		email = user.Email
	}
	h.hub.Broadcast(documentID, ws.WSMessage{
		Type: "score_submitted",
		Data: gin.H{
			"document_id": documentID,
			"employee_id": userID,
			"email":       email,
			"score":       result.Percentage,
		},
	})

	c.JSON(http.StatusOK, result)
}

// ListOwned godoc
// @Summary      List the caller's own documents
// @Tags         my-documents
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Document
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/my-documents [get]
func (h *DocumentHandler) ListOwned(c *gin.Context) {
	userID := c.GetString("user_id")

	documents, err := h.documentService.GetOwnedDocuments(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, documents)
}

// GetResults godoc
// @Summary      Per-recipient results for an owned document
// @Tags         my-documents
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Document ID"
// @Success      200 {object} services.DocumentResults
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/my-documents/{id}/results [get]
func (h *DocumentHandler) GetResults(c *gin.Context) {
	userID := c.GetString("user_id")
	documentID := c.Param("id")

	results, err := h.documentService.GetDocumentResults(userID, documentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// DeleteDocument godoc
// @Summary      Delete an owned document
// @Description  Removes the document with its questions, choices, assignments and shares
// @Tags         my-documents
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Document ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/my-documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID := c.GetString("user_id")
	documentID := c.Param("id")

	if err := h.documentService.DeleteDocument(userID, documentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "document deleted"})
}
